package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trike/internal/domain"
	"trike/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, workflow, passenger_id, driver_id, pickup_lat, pickup_lng, pickup_address,
	destination_lat, destination_lng, destination_address, vehicle_type,
	declared_passengers, actual_passengers, declared_fare, agreed_fare, final_fare,
	payment_method, status, pickup_code, cancel_reason,
	created_at, assigned_at, completed_at, cancelled_at, updated_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.Workflow,
		trip.PassengerID,
		nullString(trip.DriverID),
		trip.PickupLat,
		trip.PickupLng,
		trip.PickupAddress,
		trip.DestinationLat,
		trip.DestinationLng,
		trip.DestinationAddress,
		trip.VehicleType,
		trip.DeclaredPassengers,
		trip.ActualPassengers,
		trip.DeclaredFare,
		trip.AgreedFare,
		trip.FinalFare,
		trip.PaymentMethod,
		trip.Status,
		nullString(trip.PickupCode),
		nullString(trip.CancelReason),
		trip.CreatedAt,
		nullTime(trip.AssignedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.UpdatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// GetAll retrieves recent trips.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// UpdateStatus persists a transitioned trip with compare-and-swap semantics.
// The WHERE clause checks the expected current status; zero affected rows
// means another actor moved the trip first.
func (r *TripRepository) UpdateStatus(ctx context.Context, trip *domain.Trip, expectedFrom domain.Status) error {
	query := `
		UPDATE trips
		SET driver_id = $1, status = $2, agreed_fare = $3, final_fare = $4,
			actual_passengers = $5, pickup_code = $6, cancel_reason = $7,
			assigned_at = $8, completed_at = $9, cancelled_at = $10, updated_at = $11
		WHERE id = $12 AND status = $13
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		trip.Status,
		trip.AgreedFare,
		trip.FinalFare,
		trip.ActualPassengers,
		nullString(trip.PickupCode),
		nullString(trip.CancelReason),
		nullTime(trip.AssignedAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.CancelledAt),
		trip.UpdatedAt,
		trip.ID,
		expectedFrom,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		// Distinguish a missing trip from a concurrent transition.
		if _, err := r.GetByID(ctx, trip.ID); errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	return nil
}

// AppendStatusChange records one entry in the trip's transition history.
func (r *TripRepository) AppendStatusChange(ctx context.Context, change *domain.StatusChange) error {
	query := `
		INSERT INTO trip_status_history (trip_id, from_status, to_status, role, changed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.ExecContext(ctx, query,
		change.TripID,
		change.FromStatus,
		change.ToStatus,
		change.Role,
		change.ChangedAt,
	)
	return err
}

// History returns the trip's transition history, oldest first.
func (r *TripRepository) History(ctx context.Context, tripID string) ([]*domain.StatusChange, error) {
	query := `
		SELECT trip_id, from_status, to_status, role, changed_at
		FROM trip_status_history WHERE trip_id = $1 ORDER BY changed_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(
			&change.TripID,
			&change.FromStatus,
			&change.ToStatus,
			&change.Role,
			&change.ChangedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, &change)
	}
	return history, rows.Err()
}

// GetActiveByDriverID retrieves the driver's non-terminal trip.
func (r *TripRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE driver_id = $1 AND status NOT IN ('completed', 'cancelled', 'fare_declined')
		LIMIT 1
	`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return trip, nil
}

// CountCompletedByDriver counts trips the driver completed in [from, to).
func (r *TripRepository) CountCompletedByDriver(ctx context.Context, driverID string, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM trips
		WHERE driver_id = $1 AND status = 'completed' AND completed_at >= $2 AND completed_at < $3
	`

	var count int
	if err := r.q.QueryRowContext(ctx, query, driverID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SumEarningsByDriver sums final fares of completed trips in [from, to).
func (r *TripRepository) SumEarningsByDriver(ctx context.Context, driverID string, from, to time.Time) (float64, error) {
	query := `
		SELECT COALESCE(SUM(final_fare), 0) FROM trips
		WHERE driver_id = $1 AND status = 'completed' AND completed_at >= $2 AND completed_at < $3
	`

	var total float64
	if err := r.q.QueryRowContext(ctx, query, driverID, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, pickupCode, cancelReason sql.NullString
	var assignedAt, completedAt, cancelledAt sql.NullTime

	err := row.Scan(
		&trip.ID,
		&trip.Workflow,
		&trip.PassengerID,
		&driverID,
		&trip.PickupLat,
		&trip.PickupLng,
		&trip.PickupAddress,
		&trip.DestinationLat,
		&trip.DestinationLng,
		&trip.DestinationAddress,
		&trip.VehicleType,
		&trip.DeclaredPassengers,
		&trip.ActualPassengers,
		&trip.DeclaredFare,
		&trip.AgreedFare,
		&trip.FinalFare,
		&trip.PaymentMethod,
		&trip.Status,
		&pickupCode,
		&cancelReason,
		&trip.CreatedAt,
		&assignedAt,
		&completedAt,
		&cancelledAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if pickupCode.Valid {
		trip.PickupCode = pickupCode.String
	}
	if cancelReason.Valid {
		trip.CancelReason = cancelReason.String
	}
	if assignedAt.Valid {
		trip.AssignedAt = assignedAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}

	return &trip, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
