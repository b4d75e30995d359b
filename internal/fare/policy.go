// Package fare contains the pure pricing rules: pickup surcharges, errand
// pricing, membership benefits, and vendor-order fees. All functions take
// explicit numeric inputs and return structured breakdowns; none performs
// I/O.
package fare

import (
	"errors"
	"math"

	"trike/internal/domain"
)

// ErrCustomFareRequired signals that the pickup distance is beyond the
// surcharge table and the fare must be negotiated instead.
var ErrCustomFareRequired = errors.New("pickup distance requires custom fare negotiation")

// Pickup surcharge step table, in pesos.
const (
	maxStandardPickupKm = 4.0
)

// PickupSurcharge returns the surcharge for a driver-to-pickup distance.
// Distances beyond 4 km return ErrCustomFareRequired.
func PickupSurcharge(distanceKm float64) (float64, error) {
	switch {
	case distanceKm <= 1.5:
		return 0, nil
	case distanceKm <= 2.0:
		return 10, nil
	case distanceKm <= 3.0:
		return 20, nil
	case distanceKm <= 3.5:
		return 30, nil
	case distanceKm <= maxStandardPickupKm:
		return 40, nil
	default:
		return 0, ErrCustomFareRequired
	}
}

// QuoteRide builds a fare quote for a ride given the passenger's declared
// fare and the matched driver's distance to the pickup point. When the
// pickup distance exceeds the surcharge table the quote carries the
// custom-fare-required signal instead of a surcharge.
func QuoteRide(declaredFare, pickupDistanceKm float64) domain.FareQuote {
	quote := domain.FareQuote{
		BaseFare:         declaredFare,
		PickupDistanceKm: pickupDistanceKm,
	}

	surcharge, err := PickupSurcharge(pickupDistanceKm)
	if err != nil {
		quote.CustomFareRequired = true
		quote.Total = declaredFare
		return quote
	}

	quote.PickupSurcharge = surcharge
	quote.Total = declaredFare + surcharge
	return quote
}

// Errand pricing constants, in pesos.
const (
	errandBaseFee        = 100.0
	errandFreeKm         = 2.0
	errandPerKmRate      = 20.0
	errandFreeMinutes    = 15
	errandTimeBlockMin   = 10
	errandPerBlockRate   = 10.0
	errandCommissionRate = 0.20
)

// ErrandQuote is the structured breakdown of an errand's price.
type ErrandQuote struct {
	BaseFee           float64
	DistanceSurcharge float64
	TimeSurcharge     float64
	Total             float64
	Commission        float64
	DriverEarnings    float64
}

// PriceErrand prices an errand from its distance and estimated duration.
// The first 2 km and 15 minutes are covered by the base fee; beyond that,
// 20 per km and 10 per started 10-minute block.
func PriceErrand(distanceKm float64, minutes int) ErrandQuote {
	q := ErrandQuote{BaseFee: errandBaseFee}

	if distanceKm > errandFreeKm {
		q.DistanceSurcharge = (distanceKm - errandFreeKm) * errandPerKmRate
	}

	if minutes > errandFreeMinutes {
		blocks := (minutes - errandFreeMinutes + errandTimeBlockMin - 1) / errandTimeBlockMin
		q.TimeSurcharge = float64(blocks) * errandPerBlockRate
	}

	q.Total = q.BaseFee + q.DistanceSurcharge + q.TimeSurcharge
	q.Commission = math.Round(q.Total * errandCommissionRate)
	q.DriverEarnings = q.Total - q.Commission
	return q
}

// basePointsRate is the fraction of the fare awarded as base reward points.
const basePointsRate = 0.0333

// MembershipBenefit is the result of applying a passenger's tier to a fare.
type MembershipBenefit struct {
	Tier            domain.MembershipTier
	DiscountPercent float64
	Discount        float64
	FinalFare       float64
	BasePoints      int
	BonusPoints     int
}

// ApplyMembership applies a tier's discount to a fare and computes reward
// points: base points are 3.33% of the undiscounted fare, bonus points the
// base scaled by the tier multiplier.
func ApplyMembership(tier domain.MembershipTier, fare float64) MembershipBenefit {
	benefit := domain.BenefitFor(tier)

	discount := math.Round(fare * benefit.DiscountPercent / 100)
	base := int(math.Round(fare * basePointsRate))
	bonus := int(math.Round(float64(base) * benefit.PointsMultiplier))

	return MembershipBenefit{
		Tier:            benefit.Tier,
		DiscountPercent: benefit.DiscountPercent,
		Discount:        discount,
		FinalFare:       fare - discount,
		BasePoints:      base,
		BonusPoints:     bonus,
	}
}

// Vendor-order fee constants, in pesos.
const (
	vendorCommissionRate = 0.10
	vendorFixedFee       = 15.0
	customerDeliveryFee  = 10.0
	vendorDriverFee      = 5.0
)

// VendorFees is the fee breakdown for a vendor (merchant) order.
type VendorFees struct {
	Commission          float64
	CustomerDeliveryFee float64
	DriverFee           float64
}

// VendorOrderFees computes the platform's cut of a vendor order: 10% of the
// subtotal (rounded) plus a fixed fee, with flat customer and driver fees.
func VendorOrderFees(subtotal float64) VendorFees {
	return VendorFees{
		Commission:          math.Round(subtotal*vendorCommissionRate) + vendorFixedFee,
		CustomerDeliveryFee: customerDeliveryFee,
		DriverFee:           vendorDriverFee,
	}
}

// passengerMismatchRate is the per-head fare adjustment when the pickup
// count differs from the declared count.
const passengerMismatchRate = 10.0

// PassengerCountAdjustment returns the fare adjustment for a ride-share
// pickup whose actual passenger count differs from the declared count. The
// adjustment is negative when fewer passengers board than declared; that
// refund-like behavior is intentional and preserved.
func PassengerCountAdjustment(declared, actual int) float64 {
	return float64(actual-declared) * passengerMismatchRate
}
