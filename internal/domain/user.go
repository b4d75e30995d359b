package domain

import "time"

// User represents a passenger in the system.
type User struct {
	ID           string
	Name         string
	Phone        string
	Tier         MembershipTier
	RewardPoints int
	RideCount    int
	TopUpTotal   float64
	CreatedAt    time.Time
}
