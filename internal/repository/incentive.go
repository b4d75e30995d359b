package repository

import (
	"context"
	"time"

	"trike/internal/domain"
)

// IncentiveRepository defines the persistence operations for weekly
// incentive records. Records are immutable once created.
type IncentiveRepository interface {
	// Create persists a new incentive record.
	Create(ctx context.Context, record *domain.DriverIncentiveRecord) error

	// GetByDriverWeek retrieves the record for a driver's week window.
	// Returns nil if the week has not been evaluated.
	GetByDriverWeek(ctx context.Context, driverID string, weekStart time.Time) (*domain.DriverIncentiveRecord, error)

	// GetByDriver returns all records for a driver, newest first.
	GetByDriver(ctx context.Context, driverID string) ([]*domain.DriverIncentiveRecord, error)
}
