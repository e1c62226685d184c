package markov

// Stats holds aggregated statistics for a chain.
type Stats struct {
	Sentences      int `json:"sentences"`       // The number of sentences ingested since the last reset
	VocabSize      int `json:"vocab_size"`      // The number of distinct words
	TotalLinks     int `json:"total_links"`     // The number of recorded transitions, duplicates included
	UniqueLinks    int `json:"unique_links"`    // The number of distinct token->next_token pairs
	StartingTokens int `json:"starting_tokens"` // The number of distinct words that can start a sentence
}

// Stats returns a snapshot of statistics for the chain.
func (c *Chain) Stats() Stats {
	stats := Stats{Sentences: c.sentences}
	for tok, next := range c.graph {
		if !tok.IsStart() {
			stats.VocabSize++
		}
		stats.TotalLinks += len(next)

		distinct := make(map[Token]struct{}, len(next))
		for _, n := range next {
			distinct[n] = struct{}{}
		}
		stats.UniqueLinks += len(distinct)
		if tok.IsStart() {
			stats.StartingTokens = len(distinct)
		}
	}
	return stats
}
