// Package store persists import runs and the jobs they create in
// PostgreSQL. All queries go through the DBTX interface so the same code
// runs against a pool, a transaction, or a savepoint.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx operations the store needs.
// Satisfied by *pgxpool.Pool, pgx.Tx, and nested transactions.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}
