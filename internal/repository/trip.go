package repository

import (
	"context"
	"time"

	"trike/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// UpdateStatus persists a transitioned trip with compare-and-swap
	// semantics: the write succeeds only if the persisted status still
	// equals expectedFrom, otherwise ErrConflict is returned.
	UpdateStatus(ctx context.Context, trip *domain.Trip, expectedFrom domain.Status) error

	// AppendStatusChange records one entry in the trip's transition history.
	AppendStatusChange(ctx context.Context, change *domain.StatusChange) error

	// History returns the trip's transition history, oldest first.
	History(ctx context.Context, tripID string) ([]*domain.StatusChange, error)

	// GetActiveByDriverID retrieves the driver's non-terminal trip.
	// Returns nil if the driver has no active trip.
	GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error)

	// CountCompletedByDriver counts trips the driver completed in [from, to).
	CountCompletedByDriver(ctx context.Context, driverID string, from, to time.Time) (int, error)

	// SumEarningsByDriver sums final fares of trips the driver completed
	// in [from, to).
	SumEarningsByDriver(ctx context.Context, driverID string, from, to time.Time) (float64, error)
}
