package quotestore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestStore creates a new SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) *Store {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	// Must be idempotent.
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}

	s, err := New(db)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	quotes := []string{"The Cat Sat", "Don't stop!", "The Cat Sat"}
	if err := s.Save(ctx, "speaker=alice&submitter=", quotes); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	corpus, err := s.Load(ctx, "speaker=alice&submitter=")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(corpus.Quotes, quotes) {
		t.Errorf("expected quotes %v in order with duplicates, got %v", quotes, corpus.Quotes)
	}
	if !corpus.FetchedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("unexpected fetch time %v", corpus.FetchedAt)
	}
}

func TestSaveReplaces(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "k", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	if err := s.Save(ctx, "k", []string{"d"}); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if err := s.Save(ctx, "other", []string{"x"}); err != nil {
		t.Fatalf("Save for another key failed: %v", err)
	}

	corpus, err := s.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(corpus.Quotes, []string{"d"}) {
		t.Errorf("expected the second save to replace the first, got %v", corpus.Quotes)
	}
}

func TestSaveEmptyCorpus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "empty", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	corpus, err := s.Load(ctx, "empty")
	if err != nil {
		t.Fatalf("expected an empty corpus to be cached, got %v", err)
	}
	if len(corpus.Quotes) != 0 {
		t.Errorf("expected no quotes, got %v", corpus.Quotes)
	}
}

func TestLoadNotCached(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Load(context.Background(), "missing")
	if !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached, got %v", err)
	}
}
