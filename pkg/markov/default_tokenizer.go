package markov

import (
	"strings"
)

// ASCIIPunctuation is the set of characters removed from every word by the
// DefaultTokenizer unless overridden with WithPunctuation.
const ASCIIPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// DefaultTokenizer is a default implementation of the Tokenizer interface.
// It lowercases the sentence, splits it on single spaces, and deletes
// punctuation and surrounding whitespace from each piece, so "Don't" becomes
// "dont". Pieces left empty are dropped.
// Its behavior can be customized with functional options.
type DefaultTokenizer struct {
	separator string
	strip     [128]bool
}

// Option Is a function that configures a DefaultTokenizer.
type Option func(*DefaultTokenizer)

// WithSeparator Sets the string used for joining words during generation.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *DefaultTokenizer) {
		t.separator = sep
	}
}

// WithPunctuation replaces the set of ASCII characters deleted from words.
// Non-ASCII characters in chars are ignored.
// Default: ASCIIPunctuation
func WithPunctuation(chars string) Option {
	return func(t *DefaultTokenizer) {
		t.strip = [128]bool{}
		for _, c := range chars {
			if c < 128 {
				t.strip[c] = true
			}
		}
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewDefaultTokenizer(opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{separator: " "}
	WithPunctuation(ASCIIPunctuation)(t)

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Separator Returns the configured separator string.
func (t *DefaultTokenizer) Separator() string {
	return t.separator
}

// Tokenize normalizes sentence and returns its words in order.
func (t *DefaultTokenizer) Tokenize(sentence string) []Token {
	pieces := strings.Split(strings.ToLower(sentence), " ")
	tokens := make([]Token, 0, len(pieces))
	for _, piece := range pieces {
		word := strings.TrimSpace(strings.Map(t.dropPunctuation, piece))
		if word == "" {
			continue
		}
		tokens = append(tokens, Word(word))
	}
	return tokens
}

func (t *DefaultTokenizer) dropPunctuation(r rune) rune {
	if r < 128 && t.strip[r] {
		return -1
	}
	return r
}
