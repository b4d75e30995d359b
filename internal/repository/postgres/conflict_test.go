package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"

	"trike/internal/domain"
	"trike/internal/repository"
)

// failingQuerier returns a fixed error from every statement.
type failingQuerier struct {
	err error
}

func (q *failingQuerier) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, q.err
}

func (q *failingQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (q *failingQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, q.err
}

func uniqueViolationErr() error {
	return &pq.Error{Code: uniqueViolation, Constraint: "settlements_idempotency_key_key"}
}

func TestCreateSettlement_DuplicateKeyIsConflict(t *testing.T) {
	t.Parallel()

	repo := &LedgerRepository{q: &failingQuerier{err: uniqueViolationErr()}}

	err := repo.CreateSettlement(context.Background(), &domain.Settlement{
		ID:             "settlement-1",
		TripID:         "trip-1",
		IdempotencyKey: "settlement:trip-1",
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateIncentive_DuplicateWeekIsConflict(t *testing.T) {
	t.Parallel()

	repo := &IncentiveRepository{q: &failingQuerier{err: uniqueViolationErr()}}

	err := repo.Create(context.Background(), &domain.DriverIncentiveRecord{
		ID:        "incentive-1",
		DriverID:  "driver-1",
		WeekStart: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMapInsertError_OtherErrorsPassThrough(t *testing.T) {
	t.Parallel()

	notNull := &pq.Error{Code: "23502"}
	if got := mapInsertError(notNull); got != notNull {
		t.Errorf("not-null violation mapped to %v, want the original error", got)
	}

	plain := errors.New("connection reset")
	if got := mapInsertError(plain); got != plain {
		t.Errorf("plain error mapped to %v, want the original error", got)
	}

	if got := mapInsertError(nil); got != nil {
		t.Errorf("nil mapped to %v, want nil", got)
	}
}
