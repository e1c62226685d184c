package markov

import (
	"fmt"
	"log/slog"
)

// Ingest tokenizes each sentence and adds its transitions to the chain:
// Start-Of-Chain to the first word, each word to the one after it, and the
// last word to End-Of-Chain. Calls are cumulative.
//
// Every sentence is tokenized before the chain is touched, so a sentence
// with no words fails the call with ErrMalformedInput and leaves the chain
// exactly as it was. With WithSkipEmpty(true) such sentences are skipped.
func (c *Chain) Ingest(sentences []string) error {
	batch, skipped, err := c.tokenizeBatch(sentences)
	if err != nil {
		return err
	}
	c.apply(batch, skipped)
	return nil
}

// Replace is Reset followed by Ingest, except that the chain is only cleared
// once every sentence has tokenized. On error the previous graph is kept.
func (c *Chain) Replace(sentences []string) error {
	batch, skipped, err := c.tokenizeBatch(sentences)
	if err != nil {
		return err
	}
	c.Reset()
	c.apply(batch, skipped)
	return nil
}

func (c *Chain) tokenizeBatch(sentences []string) ([][]Token, int, error) {
	batch := make([][]Token, 0, len(sentences))
	var skipped int

	for i, sentence := range sentences {
		words := c.opts.tokenizer.Tokenize(sentence)
		if len(words) == 0 {
			if c.opts.skipEmpty {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("sentence %d (%q): %w", i, sentence, ErrMalformedInput)
		}
		batch = append(batch, words)
	}
	return batch, skipped, nil
}

func (c *Chain) apply(batch [][]Token, skipped int) {
	for _, words := range batch {
		c.link(words)
	}
	c.sentences += len(batch)

	c.logger.Debug("Ingest completed",
		slog.Int("sentences_processed", len(batch)),
		slog.Int("sentences_skipped", skipped),
		slog.Int("sentences_total", c.sentences),
		slog.Int("tokens_known", len(c.graph)),
	)
}

// link adds the transitions for a single, non-empty sentence.
func (c *Chain) link(words []Token) {
	c.graph[StartToken] = append(c.graph[StartToken], words[0])
	for i, word := range words[:len(words)-1] {
		c.graph[word] = append(c.graph[word], words[i+1])
	}
	last := words[len(words)-1]
	c.graph[last] = append(c.graph[last], EndToken)
}
