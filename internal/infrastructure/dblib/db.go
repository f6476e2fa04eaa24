package dblib

import (
	"context"
	"database/sql"
	"fmt"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Tx is a Queries bound to a transaction
type Tx struct {
	*Queries
	tx *sql.Tx
}

func (q *Queries) Begin(ctx context.Context) (*Tx, error) {
	db, ok := q.db.(*sql.DB)
	if !ok {
		return nil, fmt.Errorf("already in a transaction")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Queries: &Queries{db: tx},
		tx:      tx,
	}, nil
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Close closes the underlying database. It is a no-op inside a transaction.
func (q *Queries) Close() error {
	if db, ok := q.db.(*sql.DB); ok {
		return db.Close()
	}
	return nil
}
