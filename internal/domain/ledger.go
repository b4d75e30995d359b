package domain

import "time"

// Account identifies whose balance a ledger entry moves.
type Account string

const (
	AccountDriverWallet       Account = "driver_wallet"
	AccountPassengerWallet    Account = "passenger_wallet"
	AccountPlatformCommission Account = "platform_commission"
)

// LedgerEntry is a signed monetary record against an account. Entries are
// append-only; for any settled trip the entries sum to zero.
type LedgerEntry struct {
	ID            string
	TripID        string
	Account       Account
	OwnerID       string // driver or passenger ID; empty for the platform account
	Amount        float64
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// Wallet holds a driver's or passenger's current balance.
type Wallet struct {
	OwnerID   string
	Account   Account
	Balance   float64
	UpdatedAt time.Time
}

// Settlement records that a completed trip's money movement has been
// applied. One settlement per trip; re-settling returns the original.
type Settlement struct {
	ID             string
	TripID         string
	Fare           float64
	CommissionRate float64
	Commission     float64
	DriverNet      float64
	PaymentMethod  PaymentMethod
	IdempotencyKey string
	CreatedAt      time.Time
}
