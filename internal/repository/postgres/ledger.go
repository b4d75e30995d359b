package postgres

import (
	"context"
	"database/sql"
	"errors"

	"trike/internal/domain"
	"trike/internal/repository"
)

// LedgerRepository is a PostgreSQL implementation of repository.LedgerRepository.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{q: db}
}

// NewLedgerRepositoryWithTx creates a ledger repository using a transaction.
func NewLedgerRepositoryWithTx(tx *sql.Tx) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// AppendEntries persists a batch of ledger entries.
func (r *LedgerRepository) AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, trip_id, account, owner_id, amount, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, e := range entries {
		_, err := r.q.ExecContext(ctx, query,
			e.ID, e.TripID, e.Account, nullString(e.OwnerID), e.Amount, e.PaymentMethod, e.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetByTrip returns all ledger entries for a trip.
func (r *LedgerRepository) GetByTrip(ctx context.Context, tripID string) ([]*domain.LedgerEntry, error) {
	query := `
		SELECT id, trip_id, account, owner_id, amount, payment_method, created_at
		FROM ledger_entries WHERE trip_id = $1 ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var entry domain.LedgerEntry
		var ownerID sql.NullString
		if err := rows.Scan(
			&entry.ID, &entry.TripID, &entry.Account, &ownerID,
			&entry.Amount, &entry.PaymentMethod, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if ownerID.Valid {
			entry.OwnerID = ownerID.String
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// CreateSettlement records that a trip has been settled.
func (r *LedgerRepository) CreateSettlement(ctx context.Context, s *domain.Settlement) error {
	query := `
		INSERT INTO settlements (id, trip_id, fare, commission_rate, commission, driver_net, payment_method, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.q.ExecContext(ctx, query,
		s.ID, s.TripID, s.Fare, s.CommissionRate, s.Commission, s.DriverNet,
		s.PaymentMethod, s.IdempotencyKey, s.CreatedAt)
	// A duplicate idempotency key means another settler already won.
	return mapInsertError(err)
}

// GetSettlementByKey retrieves a settlement by its idempotency key.
func (r *LedgerRepository) GetSettlementByKey(ctx context.Context, key string) (*domain.Settlement, error) {
	query := `
		SELECT id, trip_id, fare, commission_rate, commission, driver_net, payment_method, idempotency_key, created_at
		FROM settlements WHERE idempotency_key = $1
	`

	var s domain.Settlement
	err := r.q.QueryRowContext(ctx, query, key).Scan(
		&s.ID, &s.TripID, &s.Fare, &s.CommissionRate, &s.Commission, &s.DriverNet,
		&s.PaymentMethod, &s.IdempotencyKey, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Get retrieves a wallet, creating a zero-balance one if absent.
func (r *WalletRepository) Get(ctx context.Context, ownerID string, account domain.Account) (*domain.Wallet, error) {
	query := `
		INSERT INTO wallets (owner_id, account, balance, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (owner_id, account) DO UPDATE SET owner_id = EXCLUDED.owner_id
		RETURNING owner_id, account, balance, updated_at
	`

	var wallet domain.Wallet
	err := r.q.QueryRowContext(ctx, query, ownerID, account).Scan(
		&wallet.OwnerID, &wallet.Account, &wallet.Balance, &wallet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyDelta adjusts a wallet balance by a signed amount. The non-negative
// guard runs inside the UPDATE so the check and the write are one atomic
// statement.
func (r *WalletRepository) ApplyDelta(ctx context.Context, ownerID string, account domain.Account, delta float64, blockNegative bool) error {
	if _, err := r.Get(ctx, ownerID, account); err != nil {
		return err
	}

	query := `UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE owner_id = $2 AND account = $3`
	if blockNegative {
		query += ` AND balance + $1 >= 0`
	}

	result, err := r.q.ExecContext(ctx, query, delta, ownerID, account)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrConflict
	}
	return nil
}
