package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"trike/internal/domain"
	"trike/internal/redis"
	"trike/internal/repository"
	"trike/internal/service"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu      sync.RWMutex
	trips   map[string]*domain.Trip
	history []*domain.StatusChange

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *trip
	m.trips[trip.ID] = &stored
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) UpdateStatus(ctx context.Context, trip *domain.Trip, expectedFrom domain.Status) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// Compare-and-swap: a stale expected status loses.
	if stored.Status != expectedFrom {
		return repository.ErrConflict
	}
	updated := *trip
	m.trips[trip.ID] = &updated
	return nil
}

func (m *MockTripRepository) AppendStatusChange(ctx context.Context, change *domain.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, change)
	return nil
}

func (m *MockTripRepository) History(ctx context.Context, tripID string) ([]*domain.StatusChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.StatusChange
	for _, change := range m.history {
		if change.TripID == tripID {
			result = append(result, change)
		}
	}
	return result, nil
}

func (m *MockTripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.trips {
		if t.DriverID != driverID {
			continue
		}
		switch t.Status {
		case domain.StatusCompleted, domain.StatusCancelled, domain.StatusFareDeclined:
		default:
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTripRepository) CountCompletedByDriver(ctx context.Context, driverID string, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.StatusCompleted &&
			!t.CompletedAt.Before(from) && t.CompletedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (m *MockTripRepository) SumEarningsByDriver(ctx context.Context, driverID string, from, to time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := 0.0
	for _, t := range m.trips {
		if t.DriverID == driverID && t.Status == domain.StatusCompleted &&
			!t.CompletedAt.Before(from) && t.CompletedAt.Before(to) {
			sum += t.FinalFare
		}
	}
	return sum, nil
}

// GetTrip returns a trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// HistoryLen returns the total number of recorded status changes.
func (m *MockTripRepository) HistoryLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.history)
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetByPhone(ctx context.Context, phone string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if d.Phone == phone {
			copy := *d
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

// GetDriver returns a driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	AddRewardPointsCallCount int32
	RecordRideCallCount      int32

	// Error injection
	CreateError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		copy := *u
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockUserRepository) AddRewardPoints(ctx context.Context, id string, points int) error {
	atomic.AddInt32(&m.AddRewardPointsCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RewardPoints += points
	return nil
}

func (m *MockUserRepository) SetTier(ctx context.Context, id string, tier domain.MembershipTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Tier = tier
	return nil
}

func (m *MockUserRepository) RecordRide(ctx context.Context, id string) error {
	atomic.AddInt32(&m.RecordRideCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RideCount++
	return nil
}

func (m *MockUserRepository) RecordTopUp(ctx context.Context, id string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.TopUpTotal += amount
	return nil
}

// GetUser returns a user for test assertions.
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK LEDGER REPOSITORY
// ──────────────────────────────────────────────

// MockLedgerRepository is a mock implementation of LedgerRepository.
type MockLedgerRepository struct {
	mu          sync.RWMutex
	entries     []domain.LedgerEntry
	settlements map[string]*domain.Settlement // keyed by idempotency key

	// Counters for verification
	AppendEntriesCallCount    int32
	CreateSettlementCallCount int32

	// Error injection
	AppendEntriesError error
}

// NewMockLedgerRepository creates a new mock ledger repository.
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		settlements: make(map[string]*domain.Settlement),
	}
}

func (m *MockLedgerRepository) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	atomic.AddInt32(&m.AppendEntriesCallCount, 1)
	if m.AppendEntriesError != nil {
		return m.AppendEntriesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *MockLedgerRepository) GetByTrip(ctx context.Context, tripID string) ([]*domain.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.LedgerEntry
	for i := range m.entries {
		if m.entries[i].TripID == tripID {
			copy := m.entries[i]
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockLedgerRepository) CreateSettlement(ctx context.Context, settlement *domain.Settlement) error {
	atomic.AddInt32(&m.CreateSettlementCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.settlements[settlement.IdempotencyKey]; exists {
		return repository.ErrConflict
	}
	copy := *settlement
	m.settlements[settlement.IdempotencyKey] = &copy
	return nil
}

func (m *MockLedgerRepository) GetSettlementByKey(ctx context.Context, key string) (*domain.Settlement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	settlement, ok := m.settlements[key]
	if !ok {
		return nil, nil
	}
	copy := *settlement
	return &copy, nil
}

// EntriesForTrip returns ledger entries for test assertions.
func (m *MockLedgerRepository) EntriesForTrip(tripID string) []domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []domain.LedgerEntry
	for _, e := range m.entries {
		if e.TripID == tripID {
			result = append(result, e)
		}
	}
	return result
}

// CountSettlements returns the number of recorded settlements.
func (m *MockLedgerRepository) CountSettlements() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.settlements)
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

type walletKey struct {
	ownerID string
	account domain.Account
}

// MockWalletRepository is a mock implementation of WalletRepository.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[walletKey]float64

	// Counters for verification
	ApplyDeltaCallCount int32

	// Error injection
	ApplyDeltaError error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[walletKey]float64),
	}
}

// SetBalance seeds a wallet balance for test setup.
func (m *MockWalletRepository) SetBalance(ownerID string, account domain.Account, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[walletKey{ownerID, account}] = balance
}

func (m *MockWalletRepository) Get(ctx context.Context, ownerID string, account domain.Account) (*domain.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := walletKey{ownerID, account}
	balance, ok := m.wallets[key]
	if !ok {
		// First access creates a zero-balance wallet.
		m.wallets[key] = 0
	}
	return &domain.Wallet{
		OwnerID: ownerID,
		Account: account,
		Balance: balance,
	}, nil
}

func (m *MockWalletRepository) ApplyDelta(ctx context.Context, ownerID string, account domain.Account, delta float64, blockNegative bool) error {
	atomic.AddInt32(&m.ApplyDeltaCallCount, 1)
	if m.ApplyDeltaError != nil {
		return m.ApplyDeltaError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := walletKey{ownerID, account}
	if blockNegative && m.wallets[key]+delta < 0 {
		return repository.ErrConflict
	}
	m.wallets[key] += delta
	return nil
}

// Balance returns a wallet balance for test assertions.
func (m *MockWalletRepository) Balance(ownerID string, account domain.Account) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wallets[walletKey{ownerID, account}]
}

// ──────────────────────────────────────────────
// MOCK INCENTIVE REPOSITORY
// ──────────────────────────────────────────────

// MockIncentiveRepository is a mock implementation of IncentiveRepository.
type MockIncentiveRepository struct {
	mu      sync.RWMutex
	records []*domain.DriverIncentiveRecord

	// Counters for verification
	CreateCallCount int32
}

// NewMockIncentiveRepository creates a new mock incentive repository.
func NewMockIncentiveRepository() *MockIncentiveRepository {
	return &MockIncentiveRepository{}
}

func (m *MockIncentiveRepository) Create(ctx context.Context, record *domain.DriverIncentiveRecord) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.DriverID == record.DriverID && r.WeekStart.Equal(record.WeekStart) {
			return repository.ErrConflict
		}
	}
	copy := *record
	m.records = append(m.records, &copy)
	return nil
}

func (m *MockIncentiveRepository) GetByDriverWeek(ctx context.Context, driverID string, weekStart time.Time) (*domain.DriverIncentiveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.DriverID == driverID && r.WeekStart.Equal(weekStart) {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockIncentiveRepository) GetByDriver(ctx context.Context, driverID string) ([]*domain.DriverIncentiveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.DriverIncentiveRecord
	for _, r := range m.records {
		if r.DriverID == driverID {
			copy := *r
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOCATION STORE
// ──────────────────────────────────────────────

// MockLocationStore is a mock implementation of LocationStoreInterface.
// It returns all locations of the requested vehicle type without real geo
// filtering.
type MockLocationStore struct {
	mu        sync.RWMutex
	locations map[domain.VehicleType][]redis.DriverLocation

	// Counters for verification
	UpdateLocationCallCount int32

	// Error injection
	UpdateLocationError    error
	FindNearbyDriversError error
}

// NewMockLocationStore creates a new mock location store.
func NewMockLocationStore() *MockLocationStore {
	return &MockLocationStore{
		locations: make(map[domain.VehicleType][]redis.DriverLocation),
	}
}

// AddDriverLocation seeds a driver location for test setup.
func (m *MockLocationStore) AddDriverLocation(vehicleType domain.VehicleType, loc redis.DriverLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations[vehicleType] = append(m.locations[vehicleType], loc)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType, lat, lng float64) error {
	atomic.AddInt32(&m.UpdateLocationCallCount, 1)
	if m.UpdateLocationError != nil {
		return m.UpdateLocationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	locs := m.locations[vehicleType]
	for i, loc := range locs {
		if loc.DriverID == driverID {
			locs[i].Lat = lat
			locs[i].Lng = lng
			return nil
		}
	}
	m.locations[vehicleType] = append(locs, redis.DriverLocation{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
	})
	return nil
}

func (m *MockLocationStore) FindNearbyDrivers(ctx context.Context, vehicleType domain.VehicleType, lat, lng, radiusKm float64) ([]redis.DriverLocation, error) {
	if m.FindNearbyDriversError != nil {
		return nil, m.FindNearbyDriversError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	locs := m.locations[vehicleType]
	result := make([]redis.DriverLocation, len(locs))
	copy(result, locs)
	return result, nil
}

func (m *MockLocationStore) RemoveLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	locs := m.locations[vehicleType]
	for i, loc := range locs {
		if loc.DriverID == driverID {
			m.locations[vehicleType] = append(locs[:i], locs[i+1:]...)
			return nil
		}
	}
	return nil
}

// HasLocation checks whether a driver location exists.
func (m *MockLocationStore) HasLocation(vehicleType domain.VehicleType, driverID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, loc := range m.locations[vehicleType] {
		if loc.DriverID == driverID {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Force lock failure
	ForceDriverLockFailure bool
	ForceTripLockFailure   bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) acquire(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expiry, exists := m.locks[key]; exists && time.Now().Before(expiry) {
		return false
	}
	m.locks[key] = time.Now().Add(ttl)
	return true
}

func (m *MockLockStore) AcquireDriverLock(ctx context.Context, driverID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.ForceDriverLockFailure {
		return false, nil
	}
	return m.acquire("lock:driver:"+driverID, ttl), nil
}

func (m *MockLockStore) ReleaseDriverLock(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:driver:"+driverID)
	return nil
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.ForceTripLockFailure {
		return false, nil
	}
	return m.acquire("lock:trip:"+tripID, ttl), nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:trip:"+tripID)
	return nil
}

// IsLocked checks whether a lock is held (for test assertions).
func (m *MockLockStore) IsLocked(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks[key]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK NOTIFIER
// ──────────────────────────────────────────────

// MockNotifier records notifications for test assertions.
type MockNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, n service.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

// Sent returns a copy of the recorded notifications.
func (m *MockNotifier) Sent() []service.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]service.Notification, len(m.sent))
	copy(out, m.sent)
	return out
}
