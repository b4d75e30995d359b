package domain

import "time"

// IncentiveTier names a weekly incentive level a driver can earn.
type IncentiveTier string

const (
	IncentiveTierGold   IncentiveTier = "gold"
	IncentiveTierSilver IncentiveTier = "silver"
	IncentiveTierBronze IncentiveTier = "bronze"
)

// IncentiveThreshold is one row of the weekly reward table.
type IncentiveThreshold struct {
	Tier         IncentiveTier
	MinTrips     int
	RewardAmount float64
}

// DriverIncentiveRecord is the immutable result of a week-end evaluation.
// AwardedTier is empty when the driver met no threshold.
type DriverIncentiveRecord struct {
	ID          string
	DriverID    string
	WeekStart   time.Time
	WeekEnd     time.Time
	TripCount   int
	Earnings    float64
	AwardedTier IncentiveTier
	Reward      float64
	CreatedAt   time.Time
}
