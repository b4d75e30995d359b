package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/ledger"
	"trike/internal/repository"
	"trike/internal/repository/postgres"
)

// SettlementService moves money for completed trips: it computes the
// commission split, appends the ledger entries, adjusts wallet balances,
// and records the settlement. Settlement is idempotent per trip.
type SettlementService struct {
	db                   *sql.DB
	ledgerRepo           repository.LedgerRepository
	walletRepo           repository.WalletRepository
	defaultRate          float64
	enforceDriverBalance bool
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	db *sql.DB,
	ledgerRepo repository.LedgerRepository,
	walletRepo repository.WalletRepository,
	defaultRate float64,
	enforceDriverBalance bool,
) *SettlementService {
	return &SettlementService{
		db:                   db,
		ledgerRepo:           ledgerRepo,
		walletRepo:           walletRepo,
		defaultRate:          defaultRate,
		enforceDriverBalance: enforceDriverBalance,
	}
}

// errandCommissionRate applies to errand trips instead of the default.
const errandCommissionRate = 0.20

// SettleTrip settles a completed trip exactly once. A repeated call for
// the same trip returns the original settlement without touching any
// balance.
func (s *SettlementService) SettleTrip(ctx context.Context, trip *domain.Trip) (*domain.Settlement, error) {
	if trip == nil || trip.ID == "" {
		return nil, ErrInvalidTripID
	}
	if trip.Status != domain.StatusCompleted {
		return nil, ErrTripNotCompleted
	}
	if trip.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	key := settlementKey(trip.ID)

	// Fast path: already settled.
	existing, err := s.ledgerRepo.GetSettlementByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rate := s.rateFor(trip.Workflow)

	in := ledger.SettleInput{
		TripID:         trip.ID,
		DriverID:       trip.DriverID,
		PassengerID:    trip.PassengerID,
		Fare:           settlementFare(trip),
		PaymentMethod:  trip.PaymentMethod,
		CommissionRate: rate,
	}

	if s.enforceDriverBalance && trip.PaymentMethod.IsCash() {
		wallet, err := s.walletRepo.Get(ctx, trip.DriverID, domain.AccountDriverWallet)
		if err != nil {
			return nil, err
		}
		in.DriverBalance = &wallet.Balance
	}

	entries, err := ledger.Settle(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	settlement := &domain.Settlement{
		ID:             uuid.New().String(),
		TripID:         trip.ID,
		Fare:           in.Fare,
		CommissionRate: rate,
		Commission:     commissionOf(entries),
		DriverNet:      driverNetOf(entries, in.Fare, trip.PaymentMethod),
		PaymentMethod:  trip.PaymentMethod,
		IdempotencyKey: key,
		CreatedAt:      now,
	}

	// Entries carry the settlement's timestamp so the trip ledger reads
	// back in settlement order.
	for i := range entries {
		entries[i].ID = uuid.New().String()
		entries[i].CreatedAt = now
	}

	if err := s.persist(ctx, settlement, entries); err != nil {
		if err == repository.ErrConflict {
			// Lost the race to a concurrent settlement; return the winner.
			if winner, gerr := s.ledgerRepo.GetSettlementByKey(ctx, key); gerr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}

	return settlement, nil
}

// GetTripLedger returns all ledger entries recorded for a trip.
func (s *SettlementService) GetTripLedger(ctx context.Context, tripID string) ([]*domain.LedgerEntry, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.ledgerRepo.GetByTrip(ctx, tripID)
}

// GetWallet returns a wallet balance, creating a zero-balance wallet for
// first-time owners.
func (s *SettlementService) GetWallet(ctx context.Context, ownerID string, account domain.Account) (*domain.Wallet, error) {
	if ownerID == "" {
		return nil, ErrInvalidUserID
	}
	return s.walletRepo.Get(ctx, ownerID, account)
}

// persist writes the settlement, its ledger entries, and the wallet deltas
// in one transaction. Without a database handle the injected repositories
// are used directly.
func (s *SettlementService) persist(ctx context.Context, settlement *domain.Settlement, entries []domain.LedgerEntry) error {
	if s.db == nil {
		return s.persistWith(ctx, s.ledgerRepo, s.walletRepo, settlement, entries)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txLedgerRepo := postgres.NewLedgerRepositoryWithTx(tx)
	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)

	if err = s.persistWith(ctx, txLedgerRepo, txWalletRepo, settlement, entries); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SettlementService) persistWith(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	walletRepo repository.WalletRepository,
	settlement *domain.Settlement,
	entries []domain.LedgerEntry,
) error {
	// The unique idempotency key makes a concurrent double-settle fail
	// here rather than double-charge.
	if err := ledgerRepo.CreateSettlement(ctx, settlement); err != nil {
		return err
	}

	if err := ledgerRepo.AppendEntries(ctx, entries); err != nil {
		return err
	}

	for _, entry := range entries {
		ownerID := entry.OwnerID
		if ownerID == "" {
			ownerID = platformOwnerID
		}
		blockNegative := s.enforceDriverBalance && entry.Amount < 0 &&
			entry.Account != domain.AccountPlatformCommission
		if err := walletRepo.ApplyDelta(ctx, ownerID, entry.Account, entry.Amount, blockNegative); err != nil {
			return err
		}
	}

	return nil
}

// platformOwnerID keys the single platform commission wallet.
const platformOwnerID = "platform"

func (s *SettlementService) rateFor(w domain.Workflow) float64 {
	if w == domain.WorkflowErrand {
		return errandCommissionRate
	}
	return s.defaultRate
}

// settlementFare is the amount settlement divides: the final fare once
// membership discounts have been applied, falling back through the agreed
// and declared fares.
func settlementFare(trip *domain.Trip) float64 {
	if trip.FinalFare > 0 {
		return trip.FinalFare
	}
	return fareBasis(trip)
}

func settlementKey(tripID string) string {
	return fmt.Sprintf("settlement:%s", tripID)
}

func commissionOf(entries []domain.LedgerEntry) float64 {
	for _, e := range entries {
		if e.Account == domain.AccountPlatformCommission {
			return e.Amount
		}
	}
	return 0
}

func driverNetOf(entries []domain.LedgerEntry, fare float64, method domain.PaymentMethod) float64 {
	for _, e := range entries {
		if e.Account == domain.AccountDriverWallet {
			if method.IsCash() {
				// Cash drivers already hold the fare; net is fare less
				// the recouped commission.
				return fare + e.Amount
			}
			return e.Amount
		}
	}
	return 0
}
