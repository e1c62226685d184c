// Package quotestore caches fetched training quotes in SQLite, so a chain can
// be rebuilt when the quote API is unavailable.
package quotestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ErrNotCached is returned by Load when no corpus was saved under a key.
var ErrNotCached = errors.New("quotestore: no cached quotes for key")

// Corpus is a cached set of quotes together with the time it was saved.
type Corpus struct {
	Key       string
	Quotes    []string
	FetchedAt time.Time
}

// SetupSchema initializes the cache tables in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaCorpora = `
CREATE TABLE IF NOT EXISTS quote_corpora (
    corpus_key  TEXT    PRIMARY KEY,
    fetched_at  INTEGER NOT NULL,
    quote_count INTEGER NOT NULL
);
`
		schemaQuotes = `
CREATE TABLE IF NOT EXISTS quote_entries (
    corpus_key TEXT    NOT NULL,
    position   INTEGER NOT NULL,
    quote_text TEXT    NOT NULL,
    PRIMARY KEY (corpus_key, position)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaCorpora); err != nil {
		return fmt.Errorf("could not create corpora schema: %w", err)
	}
	if _, err = tx.Exec(schemaQuotes); err != nil {
		return fmt.Errorf("could not create quotes schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store reads and writes cached corpora. It holds prepared statements and
// must be closed when no longer needed.
type Store struct {
	db               *sql.DB
	stmtGetCorpus    *sql.Stmt
	stmtGetQuotes    *sql.Stmt
	stmtDeleteQuotes *sql.Stmt
	stmtInsertQuote  *sql.Stmt
	stmtUpsertCorpus *sql.Stmt
	now              func() time.Time
	logger           *slog.Logger
}

// New creates a Store. SetupSchema must have been called on db first.
func New(db *sql.DB) (*Store, error) {
	stmtGetCorpus, err := db.Prepare(`SELECT fetched_at FROM quote_corpora WHERE corpus_key = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetQuotes, err := db.Prepare(`SELECT quote_text FROM quote_entries WHERE corpus_key = ? ORDER BY position;`)
	if err != nil {
		return nil, err
	}

	stmtDeleteQuotes, err := db.Prepare(`DELETE FROM quote_entries WHERE corpus_key = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsertQuote, err := db.Prepare(`INSERT INTO quote_entries (corpus_key, position, quote_text) VALUES (?, ?, ?);`)
	if err != nil {
		return nil, err
	}

	stmtUpsertCorpus, err := db.Prepare(`INSERT INTO quote_corpora (corpus_key, fetched_at, quote_count) VALUES (?, ?, ?) ON CONFLICT(corpus_key) DO UPDATE SET fetched_at = excluded.fetched_at, quote_count = excluded.quote_count;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:               db,
		stmtGetCorpus:    stmtGetCorpus,
		stmtGetQuotes:    stmtGetQuotes,
		stmtDeleteQuotes: stmtDeleteQuotes,
		stmtInsertQuote:  stmtInsertQuote,
		stmtUpsertCorpus: stmtUpsertCorpus,
		now:              time.Now,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// Close releases all prepared SQL statements held by the Store.
func (s *Store) Close() {
	_ = s.stmtGetCorpus.Close()
	_ = s.stmtGetQuotes.Close()
	_ = s.stmtDeleteQuotes.Close()
	_ = s.stmtInsertQuote.Close()
	_ = s.stmtUpsertCorpus.Close()
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Save replaces the corpus cached under key with quotes, keeping their order
// and any duplicates. The operation is performed within a transaction.
func (s *Store) Save(ctx context.Context, key string, quotes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction for save: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.StmtContext(ctx, s.stmtDeleteQuotes).ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to clear cached quotes for '%s': %w", key, err)
	}

	stmtInsertQuote := tx.StmtContext(ctx, s.stmtInsertQuote)
	for i, quote := range quotes {
		if _, err = stmtInsertQuote.ExecContext(ctx, key, i, quote); err != nil {
			return fmt.Errorf("failed to cache quote %d for '%s': %w", i, key, err)
		}
	}

	if _, err = tx.StmtContext(ctx, s.stmtUpsertCorpus).ExecContext(ctx, key, s.now().Unix(), len(quotes)); err != nil {
		return fmt.Errorf("failed to record corpus '%s': %w", key, err)
	}

	s.logger.InfoContext(ctx, "Quote corpus cached",
		slog.String("corpus_key", key),
		slog.Int("quotes", len(quotes)),
	)

	return tx.Commit()
}

// Load returns the corpus cached under key, or ErrNotCached.
func (s *Store) Load(ctx context.Context, key string) (*Corpus, error) {
	var fetchedAt int64
	err := s.stmtGetCorpus.QueryRowContext(ctx, key).Scan(&fetchedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w '%s'", ErrNotCached, key)
		}
		return nil, fmt.Errorf("could not look up corpus '%s': %w", key, err)
	}

	rows, err := s.stmtGetQuotes.QueryContext(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	quotes := make([]string, 0)
	for rows.Next() {
		var quote string
		if err = rows.Scan(&quote); err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &Corpus{
		Key:       key,
		Quotes:    quotes,
		FetchedAt: time.Unix(fetchedAt, 0),
	}, nil
}
