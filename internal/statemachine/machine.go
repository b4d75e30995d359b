// Package statemachine validates and applies trip status transitions. Each
// workflow family has its own machine, defined as an explicit table mapping
// (current status, acting role) to the set of allowed next statuses.
package statemachine

import (
	"fmt"
	"time"

	"trike/internal/domain"
)

// Effect is a downstream action the caller must execute after a successful
// transition. The machine itself never performs side effects.
type Effect string

const (
	// EffectDriverOnTrip flips the assigned driver's status to on_trip.
	EffectDriverOnTrip Effect = "driver_on_trip"

	// EffectDriverAvailable flips the driver's status back to available.
	EffectDriverAvailable Effect = "driver_available"

	// EffectIssuePickupCode generates the code the driver presents at the
	// vendor counter.
	EffectIssuePickupCode Effect = "issue_pickup_code"

	// EffectRecalculateFare re-prices the trip against the actual pickup
	// passenger count.
	EffectRecalculateFare Effect = "recalculate_fare"

	// EffectSettleTrip runs commission settlement for the completed trip.
	EffectSettleTrip Effect = "settle_trip"
)

// InvalidTransitionError reports an attempted move not permitted from the
// current status for the given role.
type InvalidTransitionError struct {
	Workflow domain.Workflow
	From     domain.Status
	To       domain.Status
	Role     domain.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s by %s (workflow %s)",
		e.From, e.To, e.Role, e.Workflow)
}

type transitionKey struct {
	from domain.Status
	role domain.Role
}

// machine is one workflow's transition table.
type machine struct {
	initial domain.Status
	table   map[transitionKey][]domain.Status
}

func (m *machine) allow(from domain.Status, role domain.Role, to ...domain.Status) {
	key := transitionKey{from: from, role: role}
	m.table[key] = append(m.table[key], to...)
}

func newMachine(initial domain.Status) *machine {
	return &machine{
		initial: initial,
		table:   make(map[transitionKey][]domain.Status),
	}
}

// terminalStatuses accept no further transitions.
var terminalStatuses = map[domain.Status]bool{
	domain.StatusCompleted:    true,
	domain.StatusCancelled:    true,
	domain.StatusFareDeclined: true,
}

// IsTerminal reports whether a status accepts no further transitions.
func IsTerminal(s domain.Status) bool {
	return terminalStatuses[s]
}

var machines = map[domain.Workflow]*machine{
	domain.WorkflowRide:           rideMachine(),
	domain.WorkflowNegotiatedRide: negotiatedRideMachine(),
	domain.WorkflowRideShare:      rideShareMachine(),
	domain.WorkflowDelivery:       deliveryMachine(),
	domain.WorkflowErrand:         errandMachine(),
}

func rideMachine() *machine {
	m := newMachine(domain.StatusPending)
	m.allow(domain.StatusPending, domain.RoleDispatcher, domain.StatusAssigned)
	m.allow(domain.StatusPending, domain.RoleDriver, domain.StatusAssigned)
	m.allow(domain.StatusAssigned, domain.RoleDriver, domain.StatusEnroute)
	m.allow(domain.StatusEnroute, domain.RoleDriver, domain.StatusCompleted)
	addCancellations(m)
	return m
}

func negotiatedRideMachine() *machine {
	m := newMachine(domain.StatusFareNegotiation)
	m.allow(domain.StatusFareNegotiation, domain.RoleDriver, domain.StatusFareProposed)
	m.allow(domain.StatusFareProposed, domain.RolePassenger, domain.StatusFareAccepted, domain.StatusFareDeclined)
	m.allow(domain.StatusFareAccepted, domain.RoleDriver, domain.StatusConfirmed)
	m.allow(domain.StatusConfirmed, domain.RoleDriver, domain.StatusCompleted)
	addCancellations(m)
	return m
}

func rideShareMachine() *machine {
	m := newMachine(domain.StatusPending)
	m.allow(domain.StatusPending, domain.RoleDispatcher, domain.StatusDriverAssigned)
	m.allow(domain.StatusPending, domain.RoleDriver, domain.StatusDriverAssigned)
	m.allow(domain.StatusDriverAssigned, domain.RoleDriver, domain.StatusPassengerAPickup)
	// Passenger A may ride solo, or a share request comes in before departure.
	m.allow(domain.StatusPassengerAPickup, domain.RoleDriver, domain.StatusRideOngoing)
	m.allow(domain.StatusPassengerAPickup, domain.RolePassenger, domain.StatusRideSharePending)
	m.allow(domain.StatusPassengerAPickup, domain.RoleDispatcher, domain.StatusRideSharePending)
	// Passenger A decides on the share request.
	m.allow(domain.StatusRideSharePending, domain.RolePassenger, domain.StatusRideShareApproved, domain.StatusRideShareDeclined)
	m.allow(domain.StatusRideShareApproved, domain.RoleDriver, domain.StatusPassengerBPickup)
	// A declined share continues as a solo ride.
	m.allow(domain.StatusRideShareDeclined, domain.RoleDriver, domain.StatusRideOngoing)
	m.allow(domain.StatusPassengerBPickup, domain.RoleDriver, domain.StatusRideOngoing)
	m.allow(domain.StatusRideOngoing, domain.RoleDriver, domain.StatusCompleted)
	addCancellations(m)
	return m
}

func deliveryMachine() *machine {
	m := newMachine(domain.StatusPending)
	m.allow(domain.StatusPending, domain.RoleDispatcher, domain.StatusDriverAssigned)
	m.allow(domain.StatusPending, domain.RoleDriver, domain.StatusDriverAssigned)
	m.allow(domain.StatusDriverAssigned, domain.RoleDriver, domain.StatusDriverEnRoute)
	m.allow(domain.StatusDriverEnRoute, domain.RoleDriver, domain.StatusArrivedAtVendor)
	m.allow(domain.StatusArrivedAtVendor, domain.RoleVendor, domain.StatusVendorConfirmed)
	m.allow(domain.StatusVendorConfirmed, domain.RoleDriver, domain.StatusPickupVerified)
	m.allow(domain.StatusPickupVerified, domain.RoleDriver, domain.StatusOnTheWay)
	m.allow(domain.StatusOnTheWay, domain.RoleDriver, domain.StatusArrivedAtCustomer)
	m.allow(domain.StatusArrivedAtCustomer, domain.RoleDriver, domain.StatusDelivered)
	m.allow(domain.StatusDelivered, domain.RolePassenger, domain.StatusCompleted)
	m.allow(domain.StatusDelivered, domain.RoleDispatcher, domain.StatusCompleted)
	addCancellations(m)
	return m
}

func errandMachine() *machine {
	m := newMachine(domain.StatusPending)
	m.allow(domain.StatusPending, domain.RoleDispatcher, domain.StatusDriverAssigned)
	m.allow(domain.StatusPending, domain.RoleDriver, domain.StatusDriverAssigned)
	m.allow(domain.StatusDriverAssigned, domain.RoleDriver, domain.StatusErrandOngoing)
	m.allow(domain.StatusErrandOngoing, domain.RoleDriver, domain.StatusCompleted)
	addCancellations(m)
	return m
}

// addCancellations makes cancelled reachable from every non-terminal status
// in the table: passengers and dispatchers can always cancel, drivers only
// once they hold the trip.
func addCancellations(m *machine) {
	seen := map[domain.Status]bool{m.initial: true}
	for key := range m.table {
		seen[key.from] = true
	}
	for _, tos := range m.table {
		for _, to := range tos {
			seen[to] = true
		}
	}

	for status := range seen {
		if IsTerminal(status) {
			continue
		}
		m.allow(status, domain.RolePassenger, domain.StatusCancelled)
		m.allow(status, domain.RoleDispatcher, domain.StatusCancelled)
		if status != m.initial {
			m.allow(status, domain.RoleDriver, domain.StatusCancelled)
		}
	}
}

// Initial returns the starting status for a workflow.
func Initial(w domain.Workflow) domain.Status {
	if m, ok := machines[w]; ok {
		return m.initial
	}
	return domain.StatusPending
}

// CanTransition reports whether the workflow's table permits the move.
func CanTransition(w domain.Workflow, from, to domain.Status, role domain.Role) bool {
	m, ok := machines[w]
	if !ok {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	for _, allowed := range m.table[transitionKey{from: from, role: role}] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Apply validates the requested transition and returns a copy of the trip in
// the new status, with the appropriate timestamps stamped and the downstream
// effects the caller must run. The input trip is not mutated.
func Apply(trip *domain.Trip, to domain.Status, role domain.Role, now time.Time) (*domain.Trip, []Effect, error) {
	if !CanTransition(trip.Workflow, trip.Status, to, role) {
		return nil, nil, &InvalidTransitionError{
			Workflow: trip.Workflow,
			From:     trip.Status,
			To:       to,
			Role:     role,
		}
	}

	updated := *trip
	effects := effectsFor(trip, to)

	updated.Status = to
	updated.UpdatedAt = now

	switch to {
	case domain.StatusAssigned, domain.StatusDriverAssigned, domain.StatusConfirmed:
		updated.AssignedAt = now
	case domain.StatusCompleted:
		updated.CompletedAt = now
	case domain.StatusCancelled:
		updated.CancelledAt = now
	}

	return &updated, effects, nil
}

// effectsFor enumerates the downstream effects of entering a status.
func effectsFor(trip *domain.Trip, to domain.Status) []Effect {
	var effects []Effect

	switch to {
	case domain.StatusAssigned, domain.StatusDriverAssigned, domain.StatusConfirmed:
		effects = append(effects, EffectDriverOnTrip)
	case domain.StatusVendorConfirmed:
		effects = append(effects, EffectIssuePickupCode)
	case domain.StatusPassengerBPickup:
		effects = append(effects, EffectRecalculateFare)
	case domain.StatusCompleted:
		effects = append(effects, EffectDriverAvailable, EffectSettleTrip)
	case domain.StatusCancelled:
		if trip.DriverID != "" {
			effects = append(effects, EffectDriverAvailable)
		}
	}

	return effects
}
