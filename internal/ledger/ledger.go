// Package ledger computes the commission split for a completed trip and
// produces the signed ledger entries that move money between the driver
// wallet, the passenger wallet, and the platform commission account.
package ledger

import (
	"fmt"
	"math"

	"trike/internal/domain"
)

// InvalidCommissionInputError reports a malformed settlement input. No
// entries are produced when it is returned.
type InvalidCommissionInputError struct {
	Fare           float64
	CommissionRate float64
}

func (e *InvalidCommissionInputError) Error() string {
	return fmt.Sprintf("invalid commission input: fare=%.2f rate=%.2f", e.Fare, e.CommissionRate)
}

// InsufficientBalanceError reports that a cash settlement debit would
// overdraw the driver's wallet. Returned only when the caller opts in by
// supplying the driver's balance.
type InsufficientBalanceError struct {
	DriverID string
	Balance  float64
	Debit    float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("driver %s balance %.2f cannot cover commission debit %.2f",
		e.DriverID, e.Balance, e.Debit)
}

// SettleInput carries everything Settle needs. DriverBalance is optional:
// when set, a cash debit exceeding it fails instead of driving the wallet
// negative.
type SettleInput struct {
	TripID         string
	DriverID       string
	PassengerID    string
	Fare           float64
	PaymentMethod  domain.PaymentMethod
	CommissionRate float64
	DriverBalance  *float64
}

// Settle computes the ledger entries for a completed trip. Cash fares are
// collected by the driver out of band, so the platform recoups its cut from
// the driver's wallet; non-cash fares arrive at the platform, which pays
// the driver net of commission out of the passenger's debit. Entries always
// sum to zero.
func Settle(in SettleInput) ([]domain.LedgerEntry, error) {
	if in.CommissionRate < 0 || in.CommissionRate > 1 || in.Fare < 0 {
		return nil, &InvalidCommissionInputError{Fare: in.Fare, CommissionRate: in.CommissionRate}
	}

	fare := round(in.Fare)
	commission := round(fare * in.CommissionRate)

	if in.PaymentMethod.IsCash() {
		if in.DriverBalance != nil && *in.DriverBalance < commission {
			return nil, &InsufficientBalanceError{
				DriverID: in.DriverID,
				Balance:  *in.DriverBalance,
				Debit:    commission,
			}
		}
		return []domain.LedgerEntry{
			entry(in, domain.AccountDriverWallet, in.DriverID, -commission),
			entry(in, domain.AccountPlatformCommission, "", commission),
		}, nil
	}

	driverNet := round(fare - commission)
	return []domain.LedgerEntry{
		entry(in, domain.AccountPassengerWallet, in.PassengerID, -fare),
		entry(in, domain.AccountDriverWallet, in.DriverID, driverNet),
		entry(in, domain.AccountPlatformCommission, "", commission),
	}, nil
}

func entry(in SettleInput, account domain.Account, ownerID string, amount float64) domain.LedgerEntry {
	return domain.LedgerEntry{
		TripID:        in.TripID,
		Account:       account,
		OwnerID:       ownerID,
		Amount:        amount,
		PaymentMethod: in.PaymentMethod,
	}
}

// round keeps amounts at centavo precision so the conservation invariant
// holds exactly.
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
