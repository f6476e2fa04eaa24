package dblib

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

//go:generate sqlc generate

const schemaDefinition = `
CREATE TABLE IF NOT EXISTS run (
	id TEXT PRIMARY KEY,
	started_at DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE TABLE IF NOT EXISTS stage_result (
	id INTEGER PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES run (id),
	stage TEXT NOT NULL,
	path TEXT NOT NULL,
	bytes INTEGER NOT NULL,
	digest TEXT NOT NULL,
	error TEXT NOT NULL,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stage_result_run_id ON stage_result (run_id);
`

func (q *Queries) InitializeDatabase(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, schemaDefinition)
	return err
}

// Open opens the sqlite journal at path, creating its directory and schema.
// ":memory:" opens a private in-memory journal.
func Open(ctx context.Context, path string) (*Queries, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; a single connection also keeps ":memory:"
	// databases shared by every query.
	db.SetMaxOpenConns(1)

	q := New(db)
	if err := q.InitializeDatabase(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal %s: %w", path, err)
	}
	return q, nil
}
