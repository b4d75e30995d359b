package service

import (
	"context"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/redis"
	"trike/internal/repository"
)

// DriverService handles driver registration and availability.
type DriverService struct {
	locationStore redis.LocationStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
	tripRepo      repository.TripRepository
}

// NewDriverService creates a new DriverService.
func NewDriverService(
	locationStore redis.LocationStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	tripRepo repository.TripRepository,
) *DriverService {
	return &DriverService{
		locationStore: locationStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		tripRepo:      tripRepo,
	}
}

// RegisterDriverRequest contains the parameters for registering a driver.
type RegisterDriverRequest struct {
	Name        string
	Phone       string
	VehicleType domain.VehicleType
}

// RegisterDriver creates a new driver, starting offline.
func (s *DriverService) RegisterDriver(ctx context.Context, req RegisterDriverRequest) (*domain.Driver, error) {
	if req.Name == "" || req.Phone == "" {
		return nil, ErrInvalidDriverID
	}

	vehicleType := req.VehicleType
	if vehicleType == "" {
		vehicleType = domain.VehicleTricycle
	}

	driver := &domain.Driver{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Phone:       req.Phone,
		Status:      domain.DriverStatusOffline,
		VehicleType: vehicleType,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

// GetDriver retrieves a driver by ID.
func (s *DriverService) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.driverRepo.GetByID(ctx, driverID)
}

// ListDrivers retrieves all drivers.
func (s *DriverService) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	return s.driverRepo.GetAll(ctx)
}

// ListAvailableDrivers returns the drivers currently accepting trips.
// The Redis availability set is consulted first; without one the
// database status column decides.
func (s *DriverService) ListAvailableDrivers(ctx context.Context) ([]*domain.Driver, error) {
	if s.cacheStore == nil {
		return s.availableFromDB(ctx)
	}

	ids, err := s.cacheStore.GetAvailableDrivers(ctx)
	if err != nil {
		return s.availableFromDB(ctx)
	}
	if len(ids) == 0 {
		return []*domain.Driver{}, nil
	}

	cached, missing, err := s.cacheStore.GetDriversBatch(ctx, ids)
	if err != nil {
		cached = nil
		missing = ids
	}

	drivers := make([]*domain.Driver, 0, len(ids))
	for _, id := range ids {
		if c, ok := cached[id]; ok {
			drivers = append(drivers, cachedToDriver(c))
		}
	}
	for _, id := range missing {
		driver, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}
		if driver.Status == domain.DriverStatusAvailable {
			drivers = append(drivers, driver)
		}
	}
	return drivers, nil
}

func (s *DriverService) availableFromDB(ctx context.Context) ([]*domain.Driver, error) {
	all, err := s.driverRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*domain.Driver, 0, len(all))
	for _, driver := range all {
		if driver.Status == domain.DriverStatusAvailable {
			available = append(available, driver)
		}
	}
	return available, nil
}

// GetActiveTrip returns the driver's current non-terminal trip, or nil.
func (s *DriverService) GetActiveTrip(ctx context.Context, driverID string) (*domain.Trip, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.tripRepo.GetActiveByDriverID(ctx, driverID)
}

// UpdateLocationRequest contains the parameters for updating driver location.
type UpdateLocationRequest struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// UpdateLocation stores a driver's position in the vehicle-type geo index
// and marks them available. A driver currently on a trip keeps that
// status; only their position moves.
func (s *DriverService) UpdateLocation(ctx context.Context, req UpdateLocationRequest) error {
	if req.DriverID == "" {
		return ErrInvalidDriverID
	}
	if !isValidLatitude(req.Lat) || !isValidLongitude(req.Lng) {
		return ErrInvalidLocation
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return err
	}

	// Redis is the primary real-time position store.
	if err := s.locationStore.UpdateLocation(ctx, req.DriverID, driver.VehicleType, req.Lat, req.Lng); err != nil {
		return err
	}

	if driver.Status == domain.DriverStatusOffline {
		if err := s.driverRepo.UpdateStatus(ctx, req.DriverID, domain.DriverStatusAvailable); err != nil {
			return err
		}
		driver.Status = domain.DriverStatusAvailable
	}

	if s.cacheStore != nil {
		if driver.Status == domain.DriverStatusAvailable {
			_ = s.cacheStore.AddAvailableDriver(ctx, req.DriverID)
		}
		_ = s.cacheStore.SetDriver(ctx, &redis.CachedDriver{
			ID:          driver.ID,
			Name:        driver.Name,
			Phone:       driver.Phone,
			Status:      string(driver.Status),
			VehicleType: string(driver.VehicleType),
		})
	}

	return nil
}

// SetDriverOffline takes a driver out of the dispatch pool. A driver with
// an active trip cannot go offline.
func (s *DriverService) SetDriverOffline(ctx context.Context, driverID string) error {
	if driverID == "" {
		return ErrInvalidDriverID
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return err
	}

	if active, err := s.tripRepo.GetActiveByDriverID(ctx, driverID); err != nil {
		return err
	} else if active != nil {
		return ErrDriverHasActiveTrip
	}

	if err := s.driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOffline); err != nil {
		return err
	}

	if err := s.locationStore.RemoveLocation(ctx, driverID, driver.VehicleType); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateDriver(ctx, driverID)
		_ = s.cacheStore.RemoveAvailableDriver(ctx, driverID)
	}

	return nil
}
