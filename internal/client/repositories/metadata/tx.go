package metadata

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the repository needs.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// InTx runs fn with a repository bound to a fresh transaction, committing
// when fn returns nil and rolling back on error or panic. Panics are rethrown.
func InTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, repo Repository) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, NewSQLiteRepository(tx))
	return err
}
