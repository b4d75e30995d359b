package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trike/internal/domain"
)

// IncentiveRepository is a PostgreSQL implementation of repository.IncentiveRepository.
type IncentiveRepository struct {
	q Querier
}

// NewIncentiveRepository creates a new PostgreSQL incentive repository.
func NewIncentiveRepository(db *sql.DB) *IncentiveRepository {
	return &IncentiveRepository{q: db}
}

const incentiveColumns = `id, driver_id, week_start, week_end, trip_count, earnings, awarded_tier, reward, created_at`

// Create persists a new incentive record. The unique index on
// (driver_id, week_start) keeps records immutable once awarded.
func (r *IncentiveRepository) Create(ctx context.Context, record *domain.DriverIncentiveRecord) error {
	query := `
		INSERT INTO driver_incentives (` + incentiveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		record.ID, record.DriverID, record.WeekStart, record.WeekEnd,
		record.TripCount, record.Earnings, nullString(string(record.AwardedTier)),
		record.Reward, record.CreatedAt)
	// A duplicate (driver_id, week_start) means the week was already
	// evaluated concurrently.
	return mapInsertError(err)
}

// GetByDriverWeek retrieves the record for a driver's week window.
func (r *IncentiveRepository) GetByDriverWeek(ctx context.Context, driverID string, weekStart time.Time) (*domain.DriverIncentiveRecord, error) {
	query := `SELECT ` + incentiveColumns + ` FROM driver_incentives WHERE driver_id = $1 AND week_start = $2`

	record, err := scanIncentive(r.q.QueryRowContext(ctx, query, driverID, weekStart))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// GetByDriver returns all records for a driver, newest first.
func (r *IncentiveRepository) GetByDriver(ctx context.Context, driverID string) ([]*domain.DriverIncentiveRecord, error) {
	query := `SELECT ` + incentiveColumns + ` FROM driver_incentives WHERE driver_id = $1 ORDER BY week_start DESC`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.DriverIncentiveRecord
	for rows.Next() {
		record, err := scanIncentive(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanIncentive(row rowScanner) (*domain.DriverIncentiveRecord, error) {
	var record domain.DriverIncentiveRecord
	var tier sql.NullString

	err := row.Scan(
		&record.ID, &record.DriverID, &record.WeekStart, &record.WeekEnd,
		&record.TripCount, &record.Earnings, &tier, &record.Reward, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tier.Valid {
		record.AwardedTier = domain.IncentiveTier(tier.String)
	}
	return &record, nil
}
