package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trike/internal/domain"
)

// DriverLocation represents a driver's position.
type DriverLocation struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// LocationStore handles driver location operations in Redis. Positions are
// kept in one geo set per vehicle type so dispatch only searches the fleet
// the trip asked for.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

func geoKey(vehicleType domain.VehicleType) string {
	return fmt.Sprintf("drivers:geo:%s", vehicleType)
}

// UpdateLocation stores a driver's location using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType, lat, lng float64) error {
	return s.client.GeoAdd(ctx, geoKey(vehicleType), &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyDrivers returns drivers of the given vehicle type within the
// radius (km), nearest first.
func (s *LocationStore) FindNearbyDrivers(ctx context.Context, vehicleType domain.VehicleType, lat, lng, radiusKm float64) ([]DriverLocation, error) {
	results, err := s.client.GeoRadius(ctx, geoKey(vehicleType), lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]DriverLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, DriverLocation{
			DriverID: r.Name,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
		})
	}

	return locations, nil
}

// RemoveLocation removes a driver's location from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID string, vehicleType domain.VehicleType) error {
	return s.client.ZRem(ctx, geoKey(vehicleType), driverID).Err()
}
