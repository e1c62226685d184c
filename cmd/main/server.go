package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/CTAG07/quotechain/pkg/markov"
	"github.com/CTAG07/quotechain/pkg/quotefault"
	"github.com/CTAG07/quotechain/pkg/quotestore"
)

// App owns every long-lived dependency of a run.
type App struct {
	config *Config
	logger *slog.Logger
	db     *sql.DB
	store  *quotestore.Store
	svc    *ChainService
}

// NewApp opens the quote cache and builds the chain service described by config.
func NewApp(config *Config, logger *slog.Logger) (*App, error) {
	if err := os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := quotestore.New(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create quote store: %w", err)
	}
	store.SetLogger(logger)

	src := config.QuoteSource
	client := quotefault.NewClient(src.APIURL, src.APIKey,
		quotefault.WithHTTPClient(&http.Client{Timeout: time.Duration(src.TimeoutSec) * time.Second}),
		quotefault.WithRateLimit(src.RequestsPerSecond),
		quotefault.WithLogger(logger),
	)

	chain := markov.NewChain(
		markov.WithMaxLength(config.Generation.MaxLength),
		markov.WithSkipEmpty(config.Generation.SkipEmpty),
	)

	return &App{
		config: config,
		logger: logger,
		db:     db,
		store:  store,
		svc:    NewChainService(chain, client, store, logger),
	}, nil
}

// Handler returns the HTTP handler serving every API route.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	NewMarkovAPI(a.svc, a.config.Generation, a.logger).RegisterRoutes(mux)
	NewServerAPI(a.logger).RegisterRoutes(mux)
	return withRequestLogging(a.logger, mux)
}

// Close releases the store's statements and the database connection.
func (a *App) Close() {
	a.store.Close()
	a.logger.Info("Closing database connection.")
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database", "error", err)
	}
}
