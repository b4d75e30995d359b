package repository

import (
	"context"

	"trike/internal/domain"
)

// UserRepository defines the persistence operations for passengers.
type UserRepository interface {
	// Create adds a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// AddRewardPoints credits reward points to a user.
	AddRewardPoints(ctx context.Context, id string, points int) error

	// SetTier updates a user's membership tier.
	SetTier(ctx context.Context, id string, tier domain.MembershipTier) error

	// RecordRide increments a user's lifetime ride count.
	RecordRide(ctx context.Context, id string) error

	// RecordTopUp adds to a user's cumulative top-up total.
	RecordTopUp(ctx context.Context, id string, amount float64) error
}
