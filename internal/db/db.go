package db

import (
	"database/sql"
	"fmt"

	// Import the libSQL driver — registers "libsql" with database/sql.
	// Handles remote URLs (libsql://, https://, wss://).
	_ "github.com/tursodatabase/libsql-client-go/libsql"

	// Import the pure-Go SQLite driver for local file: URLs.
	// libsql-client-go delegates file: URLs to this driver.
	_ "modernc.org/sqlite"
)

// driverName is the database/sql driver to use. Package-level so tests can
// point it at "sqlite" directly; production always uses "libsql".
var driverName = "libsql"

// Connect opens the document store and verifies it with a ping. The handle
// is created once during process initialization and passed by reference to
// every consumer; all tool access is read-only, so the shared handle needs
// no locking.
//
// Supported URL schemes:
//
//	Local file:   "file:path/to/fekra.db"
//	Remote Turso: "libsql://[db-name].turso.io?authToken=[token]"
func Connect(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open libsql: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the document table and, when the backend supports
// FTS5, the relevance text index. The returned textIndex flag reports index
// availability; a backend without FTS5 degrades gracefully (store.Search
// returns ErrNoTextIndex and callers fall back to token matching).
func EnsureSchema(db *sql.DB) (textIndex bool, err error) {
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			key        TEXT NOT NULL,
			body       TEXT NOT NULL,
			UNIQUE (collection, key)
		)`)
	if err != nil {
		return false, fmt.Errorf("create documents table: %w", err)
	}

	_, err = db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS document_search
		USING fts5(collection UNINDEXED, key UNINDEXED, content)`)
	if err != nil {
		// No FTS5 on this backend. Not fatal.
		return false, nil
	}
	return true, nil
}
