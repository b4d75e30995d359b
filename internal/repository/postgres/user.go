package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

const userColumns = `id, name, phone, tier, reward_points, ride_count, top_up_total, created_at`

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone, tier, reward_points, ride_count, top_up_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		user.ID, user.Name, user.Phone, user.Tier, user.RewardPoints, user.RideCount, user.TopUpTotal)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, phone))
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Phone, &user.Tier,
			&user.RewardPoints, &user.RideCount, &user.TopUpTotal, &user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// AddRewardPoints credits reward points to a user.
func (r *UserRepository) AddRewardPoints(ctx context.Context, id string, points int) error {
	query := `UPDATE users SET reward_points = reward_points + $1 WHERE id = $2`
	return r.exec(ctx, query, points, id)
}

// SetTier updates a user's membership tier.
func (r *UserRepository) SetTier(ctx context.Context, id string, tier domain.MembershipTier) error {
	query := `UPDATE users SET tier = $1 WHERE id = $2`
	return r.exec(ctx, query, tier, id)
}

// RecordRide increments a user's lifetime ride count.
func (r *UserRepository) RecordRide(ctx context.Context, id string) error {
	query := `UPDATE users SET ride_count = ride_count + 1 WHERE id = $1`
	return r.exec(ctx, query, id)
}

// RecordTopUp adds to a user's cumulative top-up total.
func (r *UserRepository) RecordTopUp(ctx context.Context, id string, amount float64) error {
	query := `UPDATE users SET top_up_total = top_up_total + $1 WHERE id = $2`
	return r.exec(ctx, query, amount, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Phone, &user.Tier,
		&user.RewardPoints, &user.RideCount, &user.TopUpTotal, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
