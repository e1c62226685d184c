package markov

// TokenKind distinguishes the two chain sentinels from ordinary words.
type TokenKind uint8

const (
	// KindWord is a normalized word taken from an ingested sentence.
	KindWord TokenKind = iota
	// KindStart marks the state before the first word of every sentence.
	KindStart
	// KindEnd marks the state after the last word of every sentence. It is
	// never a source of successors.
	KindEnd
)

// Token represents a single state in the chain. Words carry their text;
// the sentinels carry none, so a word spelled "start" or "end" can never
// collide with them.
type Token struct {
	Kind TokenKind
	Text string
}

var (
	// StartToken is the Start-Of-Chain sentinel.
	StartToken = Token{Kind: KindStart}
	// EndToken is the End-Of-Chain sentinel.
	EndToken = Token{Kind: KindEnd}
)

// Word returns a word token for text. The text is used as given; it is the
// tokenizer's job to normalize it.
func Word(text string) Token {
	return Token{Kind: KindWord, Text: text}
}

// IsStart reports whether t is the Start-Of-Chain sentinel.
func (t Token) IsStart() bool { return t.Kind == KindStart }

// IsEnd reports whether t is the End-Of-Chain sentinel.
func (t Token) IsEnd() bool { return t.Kind == KindEnd }

// String returns the word text, or "<SOC>" / "<EOC>" for the sentinels.
func (t Token) String() string {
	switch t.Kind {
	case KindStart:
		return "<SOC>"
	case KindEnd:
		return "<EOC>"
	default:
		return t.Text
	}
}

// Tokenizer is an interface that defines the contract for splitting input
// text into word tokens. This allows the chain logic to be independent of
// the specific normalization strategy.
type Tokenizer interface {
	// Tokenize splits a single sentence into word tokens. It never returns
	// sentinel tokens. A nil or empty result means the sentence holds no
	// usable words.
	Tokenize(sentence string) []Token
	// Separator returns the string used to join words when building a
	// generated sentence.
	Separator() string
}
