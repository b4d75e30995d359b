package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles driver entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// DriverCacheTTL is short because availability changes on every assignment.
const DriverCacheTTL = 30 * time.Second

const (
	driverCachePrefix   = "cache:driver:"
	availableDriversKey = "available_drivers"
)

// CachedDriver represents a cached driver entity.
type CachedDriver struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	VehicleType string `json:"vehicle_type"`
}

// GetDriver retrieves a driver from cache. A cache miss returns nil, nil.
func (s *CacheStore) GetDriver(ctx context.Context, driverID string) (*CachedDriver, error) {
	data, err := s.client.Get(ctx, driverCachePrefix+driverID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var driver CachedDriver
	if err := json.Unmarshal(data, &driver); err != nil {
		return nil, err
	}
	return &driver, nil
}

// SetDriver stores a driver in cache.
func (s *CacheStore) SetDriver(ctx context.Context, driver *CachedDriver) error {
	data, err := json.Marshal(driver)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, driverCachePrefix+driver.ID, data, DriverCacheTTL).Err()
}

// InvalidateDriver removes a driver from cache.
func (s *CacheStore) InvalidateDriver(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, driverCachePrefix+driverID).Err()
}

// GetDriversBatch retrieves multiple drivers from cache using a pipeline.
// Returns a map of driverID -> CachedDriver and a slice of missing IDs.
func (s *CacheStore) GetDriversBatch(ctx context.Context, driverIDs []string) (map[string]*CachedDriver, []string, error) {
	if len(driverIDs) == 0 {
		return make(map[string]*CachedDriver), nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(driverIDs))
	for _, id := range driverIDs {
		cmds[id] = pipe.Get(ctx, driverCachePrefix+id)
	}

	// Partial misses surface as redis.Nil on the individual commands, so
	// the pipeline error itself is not checked.
	_, _ = pipe.Exec(ctx)

	result := make(map[string]*CachedDriver)
	var missing []string

	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}

		var driver CachedDriver
		if err := json.Unmarshal(data, &driver); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &driver
	}

	return result, missing, nil
}

// AddAvailableDriver adds a driver to the available set.
func (s *CacheStore) AddAvailableDriver(ctx context.Context, driverID string) error {
	return s.client.SAdd(ctx, availableDriversKey, driverID).Err()
}

// RemoveAvailableDriver removes a driver from the available set.
func (s *CacheStore) RemoveAvailableDriver(ctx context.Context, driverID string) error {
	return s.client.SRem(ctx, availableDriversKey, driverID).Err()
}

// IsDriverAvailable checks if a driver is in the available set.
func (s *CacheStore) IsDriverAvailable(ctx context.Context, driverID string) (bool, error) {
	return s.client.SIsMember(ctx, availableDriversKey, driverID).Result()
}

// GetAvailableDrivers returns all available driver IDs.
func (s *CacheStore) GetAvailableDrivers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, availableDriversKey).Result()
}
