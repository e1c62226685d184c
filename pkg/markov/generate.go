package markov

import (
	"fmt"
	"log/slog"
	"strings"
)

// Generate walks the chain from Start-Of-Chain, picking a uniformly random
// successor at each step until End-Of-Chain is drawn, and returns the words
// joined by the tokenizer's separator. Because successor lists keep
// duplicates, frequent transitions are proportionally more likely.
//
// Generate returns ErrUninitializedChain if nothing has been ingested. There
// is no cycle detection; unless WithMaxLength is set, a walk ends only when
// End-Of-Chain is drawn.
func (c *Chain) Generate() (string, error) {
	if len(c.graph[StartToken]) == 0 {
		return "", ErrUninitializedChain
	}

	var builder strings.Builder
	sep := c.opts.tokenizer.Separator()
	generatedCount := 0
	current := StartToken

	for {
		choices := c.graph[current]
		if len(choices) == 0 { // Dead end in chain
			c.logger.Debug("Generation terminated due to dead-end",
				slog.String("last_token", current.String()),
				slog.Int("generated_length", generatedCount),
			)
			break
		}

		next := choices[c.intN(len(choices))]
		if next.IsEnd() {
			break
		}

		if generatedCount > 0 {
			builder.WriteString(sep)
		}
		builder.WriteString(next.Text)
		generatedCount++

		if c.opts.maxLength > 0 && generatedCount >= c.opts.maxLength {
			c.logger.Debug("Generation terminated by reaching maxLength",
				slog.Int("max_length", c.opts.maxLength),
				slog.Int("generated_length", generatedCount),
			)
			break
		}
		current = next
	}

	return builder.String(), nil
}

// GenerateMany calls Generate exactly n times and returns the results in call
// order. The first error stops generation and is returned with no partial
// results.
func (c *Chain) GenerateMany(n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("generate %d sentences: %w", n, ErrInvalidCount)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := c.Generate()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
