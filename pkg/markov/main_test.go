package markov

import (
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// newTestChain creates a chain with a fixed seed and ingests sentences into it.
func newTestChain(t *testing.T, sentences []string, opts ...ChainOption) *Chain {
	t.Helper()
	opts = append([]ChainOption{WithRand(rand.New(rand.NewPCG(7, 11)))}, opts...)
	c := NewChain(opts...)
	if len(sentences) > 0 {
		if err := c.Ingest(sentences); err != nil {
			t.Fatalf("setup: Ingest() failed: %v", err)
		}
	}
	return c
}

// checkWalk fails the test unless every transition in the generated sentence
// exists in the chain, starting at <SOC> and finishing with a link to <EOC>.
func checkWalk(t *testing.T, c *Chain, generated string) {
	t.Helper()
	words := strings.Split(generated, " ")
	prev := StartToken
	for _, w := range words {
		if !containsToken(c.Successors(prev), Word(w)) {
			t.Fatalf("generated %q uses missing link %s -> %s", generated, prev, w)
		}
		prev = Word(w)
	}
	if !containsToken(c.Successors(prev), EndToken) {
		t.Fatalf("generated %q ends on %s, which never precedes <EOC>", generated, prev)
	}
}

func containsToken(tokens []Token, want Token) bool {
	for _, tok := range tokens {
		if tok == want {
			return true
		}
	}
	return false
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
// Each line becomes one sentence.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = []string{
					"this is a fallback corpus for benchmarking.",
					"it is not very long but will prevent a crash.",
				}
				return
			}
			benchmarkCorpus = append(benchmarkCorpus, strings.Split(string(content), "\n")...)
		}
	})
	return benchmarkCorpus
}
