package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// RunInTx begins a transaction on db, stores it in the context and runs fn.
// Commit on nil error, rollback otherwise. Stores that honor tx.From join the
// same transaction without signature changes.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	return sqlTx.Commit()
}

// Transactor runs a function atomically. Services depend on this interface so
// tests and in-memory stores need no database.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQL is the Transactor over a real database.
type SQL struct {
	DB *sql.DB
}

func (s SQL) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, s.DB, fn)
}

// Nop runs fn without a surrounding transaction.
type Nop struct{}

func (Nop) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
