package main

import (
	"database/sql"
	"fmt"

	"github.com/CTAG07/quotechain/pkg/quotestore"
)

// openDB opens and verifies the database, then makes sure the quote cache
// schema exists.
func openDB(driver, dataSource string) (*sql.DB, error) {
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection avoids "database is locked".
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not connect to %s database: %w", driver, err)
	}
	if err = quotestore.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup quote cache schema: %w", err)
	}
	return db, nil
}
