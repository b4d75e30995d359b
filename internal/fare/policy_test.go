package fare

import (
	"errors"
	"testing"

	"trike/internal/domain"
)

func TestPickupSurcharge_Boundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		distanceKm float64
		want       float64
	}{
		{0, 0},
		{1.5, 0},
		{1.51, 10},
		{2.0, 10},
		{2.5, 20},
		{3.0, 20},
		{3.5, 30},
		{4.0, 40},
	}

	for _, tc := range cases {
		got, err := PickupSurcharge(tc.distanceKm)
		if err != nil {
			t.Fatalf("PickupSurcharge(%v): unexpected error %v", tc.distanceKm, err)
		}
		if got != tc.want {
			t.Errorf("PickupSurcharge(%v) = %v, want %v", tc.distanceKm, got, tc.want)
		}
	}
}

func TestPickupSurcharge_CustomFareBeyondTable(t *testing.T) {
	t.Parallel()

	for _, d := range []float64{4.01, 4.5, 10} {
		_, err := PickupSurcharge(d)
		if !errors.Is(err, ErrCustomFareRequired) {
			t.Errorf("PickupSurcharge(%v) error = %v, want ErrCustomFareRequired", d, err)
		}
	}
}

func TestQuoteRide_AddsSurcharge(t *testing.T) {
	t.Parallel()

	quote := QuoteRide(80, 3.2)
	if quote.CustomFareRequired {
		t.Fatal("unexpected custom fare signal")
	}
	if quote.PickupSurcharge != 30 {
		t.Errorf("surcharge = %v, want 30", quote.PickupSurcharge)
	}
	if quote.Total != 110 {
		t.Errorf("total = %v, want 110", quote.Total)
	}
}

func TestQuoteRide_CustomFareSignal(t *testing.T) {
	t.Parallel()

	quote := QuoteRide(80, 4.5)
	if !quote.CustomFareRequired {
		t.Fatal("expected custom fare signal for 4.5 km pickup")
	}
	if quote.PickupSurcharge != 0 {
		t.Errorf("surcharge = %v, want 0 when custom fare required", quote.PickupSurcharge)
	}
}

func TestPriceErrand_WorkedExample(t *testing.T) {
	t.Parallel()

	// 2.5 km, 20 minutes: 100 base + 0.5*20 distance + 1 block * 10 time.
	q := PriceErrand(2.5, 20)

	if q.DistanceSurcharge != 10 {
		t.Errorf("distance surcharge = %v, want 10", q.DistanceSurcharge)
	}
	if q.TimeSurcharge != 10 {
		t.Errorf("time surcharge = %v, want 10", q.TimeSurcharge)
	}
	if q.Total != 120 {
		t.Errorf("total = %v, want 120", q.Total)
	}
	if q.Commission != 24 {
		t.Errorf("commission = %v, want 24", q.Commission)
	}
	if q.DriverEarnings != 96 {
		t.Errorf("driver earnings = %v, want 96", q.DriverEarnings)
	}
}

func TestPriceErrand_WithinBaseAllowance(t *testing.T) {
	t.Parallel()

	q := PriceErrand(1.8, 12)
	if q.Total != 100 {
		t.Errorf("total = %v, want base fee only", q.Total)
	}
	if q.DistanceSurcharge != 0 || q.TimeSurcharge != 0 {
		t.Errorf("unexpected surcharges: %+v", q)
	}
}

func TestPriceErrand_TimeBlocksRoundUp(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minutes int
		want    float64
	}{
		{15, 0},
		{16, 10},
		{25, 10},
		{26, 20},
		{45, 30},
	}
	for _, tc := range cases {
		q := PriceErrand(1, tc.minutes)
		if q.TimeSurcharge != tc.want {
			t.Errorf("TimeSurcharge(%d min) = %v, want %v", tc.minutes, q.TimeSurcharge, tc.want)
		}
	}
}

func TestApplyMembership_GoldExample(t *testing.T) {
	t.Parallel()

	// Gold on a 100 peso fare: 10 discount, 90 final, 3 base points,
	// 6 bonus points at 2.0x.
	b := ApplyMembership(domain.TierGold, 100)

	if b.Discount != 10 {
		t.Errorf("discount = %v, want 10", b.Discount)
	}
	if b.FinalFare != 90 {
		t.Errorf("final fare = %v, want 90", b.FinalFare)
	}
	if b.BasePoints != 3 {
		t.Errorf("base points = %v, want 3", b.BasePoints)
	}
	if b.BonusPoints != 6 {
		t.Errorf("bonus points = %v, want 6", b.BonusPoints)
	}
}

func TestApplyMembership_Tiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tier         domain.MembershipTier
		wantDiscount float64
	}{
		{domain.TierBronze, 2},
		{domain.TierSilver, 5},
		{domain.TierGold, 10},
	}
	for _, tc := range cases {
		b := ApplyMembership(tc.tier, 100)
		if b.Discount != tc.wantDiscount {
			t.Errorf("%s discount on 100 = %v, want %v", tc.tier, b.Discount, tc.wantDiscount)
		}
	}
}

func TestApplyMembership_UnknownTierFallsBackToBronze(t *testing.T) {
	t.Parallel()

	b := ApplyMembership(domain.MembershipTier("platinum"), 100)
	if b.Tier != domain.TierBronze {
		t.Errorf("tier = %v, want bronze fallback", b.Tier)
	}
}

func TestVendorOrderFees(t *testing.T) {
	t.Parallel()

	fees := VendorOrderFees(250)
	if fees.Commission != 40 { // round(25) + 15
		t.Errorf("commission = %v, want 40", fees.Commission)
	}
	if fees.CustomerDeliveryFee != 10 {
		t.Errorf("customer delivery fee = %v, want 10", fees.CustomerDeliveryFee)
	}
	if fees.DriverFee != 5 {
		t.Errorf("driver fee = %v, want 5", fees.DriverFee)
	}
}

func TestPassengerCountAdjustment(t *testing.T) {
	t.Parallel()

	if got := PassengerCountAdjustment(2, 3); got != 10 {
		t.Errorf("over-declaration adjustment = %v, want 10", got)
	}
	if got := PassengerCountAdjustment(2, 2); got != 0 {
		t.Errorf("exact count adjustment = %v, want 0", got)
	}
	// Fewer passengers than declared yields a negative adjustment;
	// preserved behavior.
	if got := PassengerCountAdjustment(3, 1); got != -20 {
		t.Errorf("under-declaration adjustment = %v, want -20", got)
	}
}
