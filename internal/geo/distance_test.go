package geo

import (
	"math"
	"testing"
)

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	t.Parallel()

	if d := DistanceKm(14.5995, 120.9842, 14.5995, 120.9842); d != 0 {
		t.Errorf("expected 0 distance for identical points, got %f", d)
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	t.Parallel()

	pairs := [][4]float64{
		{14.5995, 120.9842, 14.6760, 121.0437}, // Manila - Quezon City
		{10.3157, 123.8854, 7.1907, 125.4553},  // Cebu - Davao
		{-33.8688, 151.2093, 51.5074, -0.1278}, // Sydney - London
	}

	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceKm_KnownDistance(t *testing.T) {
	t.Parallel()

	// Manila City Hall to Quezon City Hall is roughly 10.5 km.
	d := DistanceKm(14.5995, 120.9842, 14.6760, 121.0437)
	if d < 9 || d > 12 {
		t.Errorf("unexpected Manila-QC distance: %f km", d)
	}
}

func TestDistanceKm_NonNegative(t *testing.T) {
	t.Parallel()

	points := [][4]float64{
		{0, 0, 0, 180},
		{90, 0, -90, 0},
		{14.6, 121.0, 14.6, 121.001},
	}
	for _, p := range points {
		if d := DistanceKm(p[0], p[1], p[2], p[3]); d < 0 {
			t.Errorf("negative distance %f for %v", d, p)
		}
	}
}
