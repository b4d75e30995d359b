package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"trike/internal/repository"
)

// Querier is an interface satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ensure interfaces are satisfied.
var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// uniqueViolation is the Postgres error code for a unique-key violation.
const uniqueViolation = "23505"

// mapInsertError converts a unique-key violation into
// repository.ErrConflict so callers can recover the row that won the
// race instead of surfacing a driver error.
func mapInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}
