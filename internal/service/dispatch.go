package service

import (
	"context"
	"database/sql"
	"time"

	"trike/internal/domain"
	"trike/internal/fare"
	"trike/internal/geo"
	"trike/internal/redis"
	"trike/internal/repository"
	"trike/internal/repository/postgres"
	"trike/internal/statemachine"
)

const (
	defaultSearchRadiusKm = 5.0
	driverLockTTL         = 10 * time.Second
	tripLockTTL           = 30 * time.Second // Lock trip during dispatch
)

// DispatchService matches waiting trips to nearby available drivers.
type DispatchService struct {
	db            *sql.DB
	locationStore redis.LocationStoreInterface
	lockStore     redis.LockStoreInterface
	cacheStore    *redis.CacheStore
	driverRepo    repository.DriverRepository
	tripRepo      repository.TripRepository
	notifier      Notifier
}

// NewDispatchService creates a new DispatchService.
func NewDispatchService(
	db *sql.DB,
	locationStore redis.LocationStoreInterface,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	driverRepo repository.DriverRepository,
	tripRepo repository.TripRepository,
	notifier Notifier,
) *DispatchService {
	return &DispatchService{
		db:            db,
		locationStore: locationStore,
		lockStore:     lockStore,
		cacheStore:    cacheStore,
		driverRepo:    driverRepo,
		tripRepo:      tripRepo,
		notifier:      notifier,
	}
}

// DispatchRequest contains the parameters for dispatching a trip.
type DispatchRequest struct {
	TripID   string
	RadiusKm float64 // Optional: 0 uses default
}

// DispatchResult contains the result of a successful dispatch.
type DispatchResult struct {
	DriverID string
	Trip     *domain.Trip
	Quote    domain.FareQuote
}

// Dispatch finds and assigns an available driver to a waiting trip. The
// trip is locked for the duration so two dispatchers cannot assign it
// twice; each candidate driver is locked, re-verified against the
// database, and assigned atomically. Candidates whose pickup distance
// exceeds the surcharge table are skipped.
func (s *DispatchService) Dispatch(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = defaultSearchRadiusKm
	}

	locked, err := s.lockStore.AcquireTripLock(ctx, req.TripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		// Another dispatcher holds this trip.
		return nil, ErrTripNotDispatchable
	}
	defer func() { _ = s.lockStore.ReleaseTripLock(ctx, req.TripID) }()

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	assignedStatus := assignmentStatusFor(trip.Workflow)
	if assignedStatus == "" {
		return nil, ErrTripNotDispatchable
	}
	if !statemachine.CanTransition(trip.Workflow, trip.Status, assignedStatus, domain.RoleDispatcher) {
		return nil, ErrTripNotDispatchable
	}

	nearby, err := s.locationStore.FindNearbyDrivers(ctx, trip.VehicleType, trip.PickupLat, trip.PickupLng, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, ErrNoDriverAvailable
	}

	driverIDs := make([]string, len(nearby))
	for i, loc := range nearby {
		driverIDs[i] = loc.DriverID
	}

	cached, missingIDs := s.getDriversBatch(ctx, driverIDs)

	dbDrivers := make(map[string]*domain.Driver)
	for _, id := range missingIDs {
		driver, err := s.driverRepo.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}
		dbDrivers[id] = driver
		s.cacheDriverAsync(driver)
	}

	// Try each driver in order of proximity.
	for _, loc := range nearby {
		driverID := loc.DriverID

		var driver *domain.Driver
		if c, ok := cached[driverID]; ok {
			if c.Status != string(domain.DriverStatusAvailable) {
				continue
			}
			driver = cachedToDriver(c)
		} else if d, ok := dbDrivers[driverID]; ok {
			driver = d
		} else {
			continue
		}

		if driver.Status != domain.DriverStatusAvailable {
			continue
		}

		// The availability set is the freshest signal; a driver claimed
		// since the GEO query drops out of it before the cache expires.
		if s.cacheStore != nil {
			if member, err := s.cacheStore.IsDriverAvailable(ctx, driverID); err == nil && !member {
				continue
			}
		}

		// The pickup surcharge table caps at 4 km; beyond that the pair
		// would need fare negotiation, so skip this driver.
		pickupKm := geo.DistanceKm(loc.Lat, loc.Lng, trip.PickupLat, trip.PickupLng)
		quote := fare.QuoteRide(trip.DeclaredFare, pickupKm)
		if quote.CustomFareRequired {
			continue
		}

		locked, err := s.lockStore.AcquireDriverLock(ctx, driverID, driverLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			// Driver is being assigned to another trip.
			continue
		}

		// Re-verify from the database before assignment; cached status
		// can be stale.
		fresh, err := s.driverRepo.GetByID(ctx, driverID)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			if err == repository.ErrNotFound {
				continue
			}
			return nil, err
		}
		if fresh.Status != domain.DriverStatusAvailable {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			s.invalidateDriverCache(ctx, driverID)
			continue
		}

		result, err := s.assignDriver(ctx, trip, fresh, assignedStatus, quote)
		if err != nil {
			_ = s.lockStore.ReleaseDriverLock(ctx, driverID)
			if err == repository.ErrConflict {
				// The trip moved under us; nothing left to dispatch.
				return nil, ErrTripNotDispatchable
			}
			return nil, err
		}

		s.invalidateDriverCache(ctx, driverID)

		NotifyStatusChange(ctx, s.notifier, result.Trip, assignedStatus)

		// Driver lock expires via TTL.
		return result, nil
	}

	return nil, ErrNoDriverAvailable
}

// assignmentStatusFor returns the status a dispatcher assignment moves the
// trip into, or empty when the workflow is not dispatcher-assigned.
func assignmentStatusFor(w domain.Workflow) domain.Status {
	switch w {
	case domain.WorkflowRide:
		return domain.StatusAssigned
	case domain.WorkflowRideShare, domain.WorkflowDelivery, domain.WorkflowErrand:
		return domain.StatusDriverAssigned
	default:
		// Negotiated rides are claimed by drivers proposing a fare, not
		// dispatched.
		return ""
	}
}

func (s *DispatchService) getDriversBatch(ctx context.Context, driverIDs []string) (map[string]*redis.CachedDriver, []string) {
	if s.cacheStore == nil {
		return make(map[string]*redis.CachedDriver), driverIDs
	}
	cached, missing, err := s.cacheStore.GetDriversBatch(ctx, driverIDs)
	if err != nil {
		return make(map[string]*redis.CachedDriver), driverIDs
	}
	return cached, missing
}

// cacheDriverAsync caches a driver asynchronously (fire and forget).
func (s *DispatchService) cacheDriverAsync(driver *domain.Driver) {
	if s.cacheStore == nil {
		return
	}
	go func() {
		_ = s.cacheStore.SetDriver(context.Background(), &redis.CachedDriver{
			ID:          driver.ID,
			Name:        driver.Name,
			Phone:       driver.Phone,
			Status:      string(driver.Status),
			VehicleType: string(driver.VehicleType),
		})
	}()
}

func cachedToDriver(c *redis.CachedDriver) *domain.Driver {
	return &domain.Driver{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Status:      domain.DriverStatus(c.Status),
		VehicleType: domain.VehicleType(c.VehicleType),
	}
}

func (s *DispatchService) invalidateDriverCache(ctx context.Context, driverID string) {
	if s.cacheStore == nil {
		return
	}
	_ = s.cacheStore.InvalidateDriver(ctx, driverID)
	_ = s.cacheStore.RemoveAvailableDriver(ctx, driverID)
}

// assignDriver atomically assigns a driver to a trip in a transaction,
// applying the workflow transition and flipping the driver to on_trip.
func (s *DispatchService) assignDriver(ctx context.Context, trip *domain.Trip, driver *domain.Driver, to domain.Status, quote domain.FareQuote) (*DispatchResult, error) {
	updated, _, err := statemachine.Apply(trip, to, domain.RoleDispatcher, time.Now())
	if err != nil {
		return nil, err
	}

	updated.DriverID = driver.ID
	if updated.AgreedFare == 0 {
		updated.AgreedFare = quote.Total
	}

	// Without a database handle the injected repositories are used
	// directly instead of a transaction.
	if s.db == nil {
		if err = s.persistAssignment(ctx, s.tripRepo, s.driverRepo, trip, updated, driver.ID, to); err != nil {
			return nil, err
		}
		return &DispatchResult{DriverID: driver.ID, Trip: updated, Quote: quote}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txDriverRepo := postgres.NewDriverRepositoryWithTx(tx)

	if err = s.persistAssignment(ctx, txTripRepo, txDriverRepo, trip, updated, driver.ID, to); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &DispatchResult{
		DriverID: driver.ID,
		Trip:     updated,
		Quote:    quote,
	}, nil
}

func (s *DispatchService) persistAssignment(
	ctx context.Context,
	tripRepo repository.TripRepository,
	driverRepo repository.DriverRepository,
	before, after *domain.Trip,
	driverID string,
	to domain.Status,
) error {
	if err := tripRepo.UpdateStatus(ctx, after, before.Status); err != nil {
		return err
	}

	if err := tripRepo.AppendStatusChange(ctx, &domain.StatusChange{
		TripID:     after.ID,
		FromStatus: before.Status,
		ToStatus:   to,
		Role:       domain.RoleDispatcher,
		ChangedAt:  after.UpdatedAt,
	}); err != nil {
		return err
	}

	return driverRepo.UpdateStatus(ctx, driverID, domain.DriverStatusOnTrip)
}
