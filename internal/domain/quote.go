package domain

// FareQuote is an ephemeral fare breakdown computed at decision time from a
// trip's declared fare and the driver's pickup distance. It is never
// persisted.
type FareQuote struct {
	BaseFare           float64
	PickupDistanceKm   float64
	PickupSurcharge    float64
	Total              float64
	CustomFareRequired bool // pickup distance beyond the surcharge table
}
