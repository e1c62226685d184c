package markov

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
)

var (
	// ErrUninitializedChain is returned by Generate when nothing has been
	// ingested since the chain was created or last reset.
	ErrUninitializedChain = errors.New("markov: chain is empty, ingest sentences first")
	// ErrMalformedInput is returned by Ingest when a sentence normalizes to
	// zero words.
	ErrMalformedInput = errors.New("markov: sentence contains no words")
	// ErrInvalidCount is returned by GenerateMany for a negative count.
	ErrInvalidCount = errors.New("markov: count must not be negative")
)

// chainOptions Is used by NewChain to configure default options.
type chainOptions struct {
	tokenizer Tokenizer
	rng       *rand.Rand
	maxLength int
	skipEmpty bool
}

// ChainOption is a function that configures a Chain. It's used as a variadic
// argument to NewChain.
type ChainOption func(*chainOptions)

// WithTokenizer sets the tokenizer used by Ingest and for joining generated
// words. Default: NewDefaultTokenizer()
func WithTokenizer(t Tokenizer) ChainOption {
	return func(o *chainOptions) { o.tokenizer = t }
}

// WithRand sets the random source used for successor selection. Supplying a
// seeded source makes generation reproducible. By default the package-level
// math/rand/v2 generator is used.
func WithRand(r *rand.Rand) ChainOption {
	return func(o *chainOptions) { o.rng = r }
}

// WithMaxLength caps the number of words in a generated sentence. The walk
// stops once the cap is reached and the words so far are returned. A value
// of 0 or less disables the cap, in which case a walk only ends when the
// End-Of-Chain token is drawn.
func WithMaxLength(n int) ChainOption {
	return func(o *chainOptions) { o.maxLength = n }
}

// WithSkipEmpty makes Ingest skip sentences that contain no words instead of
// rejecting the whole batch with ErrMalformedInput.
func WithSkipEmpty(skip bool) ChainOption {
	return func(o *chainOptions) { o.skipEmpty = skip }
}

// Chain is a first-order Markov chain over words. Each token maps to the list
// of tokens that followed it in the ingested text; duplicates are kept, so a
// transition seen twice is twice as likely to be picked.
//
// A Chain is not safe for concurrent use. Callers sharing one between
// goroutines must serialize access themselves.
type Chain struct {
	graph     map[Token][]Token
	sentences int
	opts      chainOptions
	logger    *slog.Logger
}

// NewChain creates an empty chain, configured by the given options.
func NewChain(opts ...ChainOption) *Chain {
	options := chainOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.tokenizer == nil {
		options.tokenizer = NewDefaultTokenizer()
	}

	c := &Chain{
		opts:   options,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.Reset()
	return c
}

// SetLogger sets the logger for the Chain. By default, all logs are discarded.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Reset clears every link, leaving only an empty Start-Of-Chain entry. It is
// safe to call at any time, any number of times.
func (c *Chain) Reset() {
	c.graph = map[Token][]Token{StartToken: {}}
	c.sentences = 0
}

// Successors returns a copy of the tokens that follow tok, in the order they
// were ingested. It returns nil for tokens the chain has never seen.
func (c *Chain) Successors(tok Token) []Token {
	next, ok := c.graph[tok]
	if !ok {
		return nil
	}
	out := make([]Token, len(next))
	copy(out, next)
	return out
}

// Len returns the number of tokens that have successors, including the
// Start-Of-Chain token.
func (c *Chain) Len() int {
	return len(c.graph)
}

func (c *Chain) intN(n int) int {
	if c.opts.rng != nil {
		return c.opts.rng.IntN(n)
	}
	return rand.IntN(n)
}
