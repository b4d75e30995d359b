package ledger

import (
	"errors"
	"math"
	"testing"

	"trike/internal/domain"
)

func cashInput() SettleInput {
	return SettleInput{
		TripID:         "trip-1",
		DriverID:       "driver-1",
		PassengerID:    "passenger-1",
		Fare:           100,
		PaymentMethod:  domain.PaymentMethodCash,
		CommissionRate: 0.10,
	}
}

func sum(entries []domain.LedgerEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Amount
	}
	return total
}

func TestSettle_CashProducesTwoEntriesSummingToZero(t *testing.T) {
	t.Parallel()

	entries, err := Settle(cashInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	if entries[0].Account != domain.AccountDriverWallet || entries[0].Amount != -10 {
		t.Errorf("driver entry = %+v, want -10 debit", entries[0])
	}
	if entries[1].Account != domain.AccountPlatformCommission || entries[1].Amount != 10 {
		t.Errorf("platform entry = %+v, want +10 credit", entries[1])
	}
	if sum(entries) != 0 {
		t.Errorf("entries sum to %v, want 0", sum(entries))
	}
}

func TestSettle_NonCashCreditsDriverNetOfCommission(t *testing.T) {
	t.Parallel()

	in := cashInput()
	in.PaymentMethod = domain.PaymentMethodWallet

	entries, err := Settle(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	byAccount := map[domain.Account]float64{}
	for _, e := range entries {
		byAccount[e.Account] = e.Amount
	}
	if byAccount[domain.AccountPassengerWallet] != -100 {
		t.Errorf("passenger debit = %v, want -100", byAccount[domain.AccountPassengerWallet])
	}
	if byAccount[domain.AccountDriverWallet] != 90 {
		t.Errorf("driver credit = %v, want 90", byAccount[domain.AccountDriverWallet])
	}
	if byAccount[domain.AccountPlatformCommission] != 10 {
		t.Errorf("platform credit = %v, want 10", byAccount[domain.AccountPlatformCommission])
	}
	if sum(entries) != 0 {
		t.Errorf("entries sum to %v, want 0", sum(entries))
	}
}

func TestSettle_ConservationHoldsAtAwkwardAmounts(t *testing.T) {
	t.Parallel()

	fares := []float64{0, 0.01, 33.33, 99.99, 123.456, 10000}
	rates := []float64{0, 0.1, 0.15, 0.2, 1}
	methods := []domain.PaymentMethod{domain.PaymentMethodCash, domain.PaymentMethodWallet}

	for _, fare := range fares {
		for _, rate := range rates {
			for _, method := range methods {
				in := cashInput()
				in.Fare = fare
				in.CommissionRate = rate
				in.PaymentMethod = method

				entries, err := Settle(in)
				if err != nil {
					t.Fatalf("Settle(fare=%v rate=%v %s): %v", fare, rate, method, err)
				}
				if s := sum(entries); math.Abs(s) > 1e-9 {
					t.Errorf("fare=%v rate=%v %s: entries sum to %v", fare, rate, method, s)
				}
			}
		}
	}
}

func TestSettle_RejectsBadInputsWithNoEntries(t *testing.T) {
	t.Parallel()

	bad := []SettleInput{
		func() SettleInput { in := cashInput(); in.CommissionRate = -0.1; return in }(),
		func() SettleInput { in := cashInput(); in.CommissionRate = 1.5; return in }(),
		func() SettleInput { in := cashInput(); in.Fare = -1; return in }(),
	}

	for _, in := range bad {
		entries, err := Settle(in)
		var invalid *InvalidCommissionInputError
		if !errors.As(err, &invalid) {
			t.Errorf("Settle(%+v) error = %v, want InvalidCommissionInputError", in, err)
		}
		if entries != nil {
			t.Errorf("Settle(%+v) produced entries on error", in)
		}
	}
}

func TestSettle_CashDebitBlockedByLowBalance(t *testing.T) {
	t.Parallel()

	in := cashInput()
	balance := 5.0
	in.DriverBalance = &balance

	_, err := Settle(in)
	var insufficient *InsufficientBalanceError
	if !errors.As(err, &insufficient) {
		t.Fatalf("error = %v, want InsufficientBalanceError", err)
	}
	if insufficient.Debit != 10 || insufficient.Balance != 5 {
		t.Errorf("diagnostics = %+v", insufficient)
	}
}

func TestSettle_CashDebitAllowedWhenBalanceCovers(t *testing.T) {
	t.Parallel()

	in := cashInput()
	balance := 10.0
	in.DriverBalance = &balance

	if _, err := Settle(in); err != nil {
		t.Errorf("balance exactly covering the debit should settle: %v", err)
	}
}

func TestSettle_BalanceUncheckedForNonCash(t *testing.T) {
	t.Parallel()

	in := cashInput()
	in.PaymentMethod = domain.PaymentMethodEWallet
	balance := 0.0
	in.DriverBalance = &balance

	if _, err := Settle(in); err != nil {
		t.Errorf("non-cash settlement credits the driver, balance is irrelevant: %v", err)
	}
}
