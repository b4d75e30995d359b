package redis

import (
	"context"
	"time"

	"trike/internal/domain"
)

// LocationStoreInterface defines the interface for driver location operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType, lat, lng float64) error
	FindNearbyDrivers(ctx context.Context, vehicleType domain.VehicleType, lat, lng, radiusKm float64) ([]DriverLocation, error)
	RemoveLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error)
	ReleaseDriverLock(ctx context.Context, driverID string) error
	AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleaseTripLock(ctx context.Context, tripID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
