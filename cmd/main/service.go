package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/CTAG07/quotechain/pkg/markov"
	"github.com/CTAG07/quotechain/pkg/quotefault"
	"github.com/CTAG07/quotechain/pkg/quotestore"
)

const (
	sourceAPI   = "api"
	sourceCache = "cache"
)

// QuoteFetcher retrieves raw training quotes.
type QuoteFetcher interface {
	Fetch(ctx context.Context, filter quotefault.Filter) ([]string, error)
}

// QuoteCache keeps the last fetched corpus per filter.
type QuoteCache interface {
	Save(ctx context.Context, key string, quotes []string) error
	Load(ctx context.Context, key string) (*quotestore.Corpus, error)
}

// RefreshResult describes a completed Refresh.
type RefreshResult struct {
	Source      string            `json:"source"`
	Filter      quotefault.Filter `json:"filter"`
	Quotes      int               `json:"quotes"`
	RefreshedAt time.Time         `json:"refreshed_at"`
	Stats       markov.Stats      `json:"stats"`
}

// ChainService serializes all access to a single markov.Chain and rebuilds it
// from the quote source on demand.
type ChainService struct {
	mu     sync.Mutex
	chain  *markov.Chain
	last   *RefreshResult
	source QuoteFetcher
	cache  QuoteCache
	logger *slog.Logger
}

// NewChainService creates a service around chain. cache may be nil.
func NewChainService(chain *markov.Chain, source QuoteFetcher, cache QuoteCache, logger *slog.Logger) *ChainService {
	chain.SetLogger(logger)
	return &ChainService{
		chain:  chain,
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// Refresh fetches the quotes matching filter and rebuilds the chain from them.
// A successful fetch is written to the cache; a failed one falls back to the
// cached corpus for the same filter. The chain is only replaced once every
// quote has tokenized; a failed rebuild keeps the previous chain.
func (s *ChainService) Refresh(ctx context.Context, filter quotefault.Filter) (*RefreshResult, error) {
	source := sourceAPI
	quotes, err := s.source.Fetch(ctx, filter)
	if err != nil {
		if s.cache == nil {
			return nil, fmt.Errorf("failed to fetch quotes: %w", err)
		}
		s.logger.WarnContext(ctx, "Quote fetch failed, falling back to cache",
			slog.String("corpus_key", filter.Key()),
			slog.Any("error", err),
		)
		corpus, cacheErr := s.cache.Load(ctx, filter.Key())
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to fetch quotes: %w", errors.Join(err, cacheErr))
		}
		quotes = corpus.Quotes
		source = sourceCache
	} else if s.cache != nil {
		if err = s.cache.Save(ctx, filter.Key(), quotes); err != nil {
			s.logger.ErrorContext(ctx, "Failed to cache quotes", slog.Any("error", err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.chain.Replace(quotes); err != nil {
		return nil, fmt.Errorf("failed to build chain: %w", err)
	}

	result := &RefreshResult{
		Source:      source,
		Filter:      filter,
		Quotes:      len(quotes),
		RefreshedAt: time.Now(),
		Stats:       s.chain.Stats(),
	}
	s.last = result

	s.logger.InfoContext(ctx, "Chain refreshed",
		slog.String("source", source),
		slog.String("speaker", filter.Speaker),
		slog.String("submitter", filter.Submitter),
		slog.Int("quotes", len(quotes)),
		slog.Int("vocab_size", result.Stats.VocabSize),
	)
	return result, nil
}

// Generate returns n generated quotes.
func (s *ChainService) Generate(n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.GenerateMany(n)
}

// Stats returns the current chain statistics and the last refresh, if any.
func (s *ChainService) Stats() (markov.Stats, *RefreshResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chain.Stats(), s.last
}
