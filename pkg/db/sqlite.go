package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// sqliteSchema mirrors postgresSchema. Tags and group references are stored as
// JSON arrays in TEXT columns and dates as YYYY-MM-DD text.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS problem_sets (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS problems (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	difficulty     TEXT NOT NULL DEFAULT '',
	comfort        INTEGER NOT NULL DEFAULT 0 CHECK (comfort BETWEEN 0 AND 5),
	problem_link   TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	group_ids      TEXT NOT NULL DEFAULT '[]',
	last_practiced TEXT NULL,
	icebox         INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_problems_name ON problems(name);
`

// OpenSQLite opens (or creates) a SQLite database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
