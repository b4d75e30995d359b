package domain

// MembershipTier represents a passenger's loyalty tier.
type MembershipTier string

const (
	TierBronze MembershipTier = "bronze"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
)

// TierBenefit holds the static benefits attached to a membership tier.
type TierBenefit struct {
	Tier             MembershipTier
	MinRides         int     // rides required to hold the tier
	MinTopUps        float64 // cumulative wallet top-ups required
	DiscountPercent  float64 // fare discount, e.g. 10 for Gold
	PointsMultiplier float64 // applied to base reward points
}

// TierBenefits is the static tier configuration, ordered highest first so
// qualification checks take the best tier a passenger meets.
var TierBenefits = []TierBenefit{
	{Tier: TierGold, MinRides: 50, MinTopUps: 5000, DiscountPercent: 10, PointsMultiplier: 2.0},
	{Tier: TierSilver, MinRides: 20, MinTopUps: 2000, DiscountPercent: 5, PointsMultiplier: 1.5},
	{Tier: TierBronze, MinRides: 0, MinTopUps: 0, DiscountPercent: 2, PointsMultiplier: 1.2},
}

// BenefitFor returns the benefit row for a tier. Unknown tiers get Bronze.
func BenefitFor(tier MembershipTier) TierBenefit {
	for _, b := range TierBenefits {
		if b.Tier == tier {
			return b
		}
	}
	return TierBenefits[len(TierBenefits)-1]
}
