// Package incentive evaluates a driver's weekly trip volume against the
// reward threshold table.
package incentive

import (
	"sort"

	"trike/internal/domain"
)

// DefaultThresholds is the standard weekly reward table.
var DefaultThresholds = []domain.IncentiveThreshold{
	{Tier: domain.IncentiveTierGold, MinTrips: 60, RewardAmount: 1000},
	{Tier: domain.IncentiveTierSilver, MinTrips: 40, RewardAmount: 500},
	{Tier: domain.IncentiveTierBronze, MinTrips: 20, RewardAmount: 200},
}

// Award is the outcome of a weekly evaluation.
type Award struct {
	Tier   domain.IncentiveTier
	Reward float64
}

// Evaluate checks the thresholds from highest trip requirement to lowest
// and returns the first one the driver's trip count meets, or nil when none
// is met. Tiers never combine.
func Evaluate(tripCount int, earnings float64, thresholds []domain.IncentiveThreshold) *Award {
	sorted := make([]domain.IncentiveThreshold, len(thresholds))
	copy(sorted, thresholds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinTrips > sorted[j].MinTrips
	})

	for _, th := range sorted {
		if tripCount >= th.MinTrips {
			return &Award{Tier: th.Tier, Reward: th.RewardAmount}
		}
	}
	return nil
}
