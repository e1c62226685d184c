/*
Package markov provides a small, in-memory, first-order Markov chain for
generating pseudo-random text from a corpus of short sentences.

A Chain is built by Ingest, which normalizes each sentence into lowercase,
punctuation-free words and records every word-to-next-word transition, and
is read by Generate, which performs a random walk from the Start-Of-Chain
state until the End-Of-Chain state is drawn.

	chain := markov.NewChain()
	if err := chain.Ingest([]string{"The cat sat.", "The dog ran!"}); err != nil {
		return err
	}
	quote, err := chain.Generate()

The package has no network or storage dependencies; fetching training text
is left to the caller.
*/
package markov
