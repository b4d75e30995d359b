package repository

import (
	"context"

	"trike/internal/domain"
)

// LedgerRepository defines the append-only persistence for ledger entries
// and trip settlements.
type LedgerRepository interface {
	// AppendEntries persists a batch of ledger entries.
	AppendEntries(ctx context.Context, entries []domain.LedgerEntry) error

	// GetByTrip returns all ledger entries for a trip.
	GetByTrip(ctx context.Context, tripID string) ([]*domain.LedgerEntry, error)

	// CreateSettlement records that a trip has been settled.
	CreateSettlement(ctx context.Context, settlement *domain.Settlement) error

	// GetSettlementByKey retrieves a settlement by its idempotency key.
	// Returns nil if no settlement exists with the given key.
	GetSettlementByKey(ctx context.Context, key string) (*domain.Settlement, error)
}

// WalletRepository defines the persistence operations for wallet balances.
type WalletRepository interface {
	// Get retrieves a wallet, creating a zero-balance one if absent.
	Get(ctx context.Context, ownerID string, account domain.Account) (*domain.Wallet, error)

	// ApplyDelta adjusts a wallet balance by a signed amount. When
	// blockNegative is set, a delta that would drive the balance below
	// zero returns ErrConflict and leaves the balance untouched.
	ApplyDelta(ctx context.Context, ownerID string, account domain.Account, delta float64, blockNegative bool) error
}
