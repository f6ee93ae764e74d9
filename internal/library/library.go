// Package library provides read-only access to the Photos library database.
// It operates on a point-in-time snapshot of the SQLite file Photos maintains
// and may lag writes issued through the automation bridge; callers are
// expected to treat results as eventually consistent.
package library

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a read-only view over the Photos library database.
//
// When the database file is missing or unreadable the Index stays usable:
// every query returns empty results. These reads back non-critical UI
// listings, so an absent library must never take the application down.
type Index struct {
	db *sql.DB

	// Core Data join tables carry schema-version-dependent names
	// (e.g. Z_1KEYWORDS vs Z_40KEYWORDS). Resolved once at open.
	keywordJoin joinTable
	albumJoin   joinTable
	faceAsset   string // ZDETECTEDFACE asset column: ZASSET or ZASSETFORFACE
}

// Open opens the library database read-only. A missing or unreadable file is
// not an error; the returned Index simply serves empty listings.
func Open(path string) *Index {
	idx := &Index{}

	if path == "" {
		return idx
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("library index unavailable: %v", err)
		return idx
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		log.Printf("library index unavailable: %v", err)
		return idx
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Printf("library index unavailable: %v", err)
		db.Close()
		return idx
	}

	idx.db = db
	if err := idx.resolveSchema(ctx); err != nil {
		log.Printf("library index unavailable: %v", err)
		db.Close()
		idx.db = nil
	}
	return idx
}

// Available reports whether the library database could be opened.
func (idx *Index) Available() bool {
	return idx.db != nil
}

// Close closes the underlying database.
func (idx *Index) Close() error {
	if idx.db != nil {
		if err := idx.db.Close(); err != nil {
			return fmt.Errorf("closing library database: %w", err)
		}
	}
	return nil
}

// query runs a read and hands rows to scan. Unavailable index yields no rows.
func (idx *Index) query(ctx context.Context, q string, scan func(*sql.Rows) error, args ...any) error {
	if idx.db == nil {
		return nil
	}

	rows, err := idx.db.QueryContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scanning row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows: %w", err)
	}
	return nil
}
