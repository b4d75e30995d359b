package statemachine

import (
	"errors"
	"testing"
	"time"

	"trike/internal/domain"
)

func newTrip(w domain.Workflow, status domain.Status) *domain.Trip {
	return &domain.Trip{
		ID:          "trip-1",
		Workflow:    w,
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      status,
	}
}

func TestApply_ResultMatchesRequestedStatus(t *testing.T) {
	t.Parallel()

	now := time.Now()
	trip := newTrip(domain.WorkflowRide, domain.StatusPending)

	updated, _, err := Apply(trip, domain.StatusAssigned, domain.RoleDispatcher, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.StatusAssigned {
		t.Errorf("status = %s, want assigned", updated.Status)
	}
	if updated.AssignedAt != now {
		t.Error("AssignedAt not stamped")
	}
	// Input trip is untouched.
	if trip.Status != domain.StatusPending {
		t.Error("input trip was mutated")
	}
}

func TestApply_EveryAllowedHopSucceeds(t *testing.T) {
	t.Parallel()

	// Walk each workflow's happy path one hop at a time.
	paths := map[domain.Workflow][]struct {
		to   domain.Status
		role domain.Role
	}{
		domain.WorkflowRide: {
			{domain.StatusAssigned, domain.RoleDispatcher},
			{domain.StatusEnroute, domain.RoleDriver},
			{domain.StatusCompleted, domain.RoleDriver},
		},
		domain.WorkflowNegotiatedRide: {
			{domain.StatusFareProposed, domain.RoleDriver},
			{domain.StatusFareAccepted, domain.RolePassenger},
			{domain.StatusConfirmed, domain.RoleDriver},
			{domain.StatusCompleted, domain.RoleDriver},
		},
		domain.WorkflowRideShare: {
			{domain.StatusDriverAssigned, domain.RoleDispatcher},
			{domain.StatusPassengerAPickup, domain.RoleDriver},
			{domain.StatusRideSharePending, domain.RolePassenger},
			{domain.StatusRideShareApproved, domain.RolePassenger},
			{domain.StatusPassengerBPickup, domain.RoleDriver},
			{domain.StatusRideOngoing, domain.RoleDriver},
			{domain.StatusCompleted, domain.RoleDriver},
		},
		domain.WorkflowDelivery: {
			{domain.StatusDriverAssigned, domain.RoleDispatcher},
			{domain.StatusDriverEnRoute, domain.RoleDriver},
			{domain.StatusArrivedAtVendor, domain.RoleDriver},
			{domain.StatusVendorConfirmed, domain.RoleVendor},
			{domain.StatusPickupVerified, domain.RoleDriver},
			{domain.StatusOnTheWay, domain.RoleDriver},
			{domain.StatusArrivedAtCustomer, domain.RoleDriver},
			{domain.StatusDelivered, domain.RoleDriver},
			{domain.StatusCompleted, domain.RolePassenger},
		},
		domain.WorkflowErrand: {
			{domain.StatusDriverAssigned, domain.RoleDriver},
			{domain.StatusErrandOngoing, domain.RoleDriver},
			{domain.StatusCompleted, domain.RoleDriver},
		},
	}

	for workflow, hops := range paths {
		trip := newTrip(workflow, Initial(workflow))
		for _, hop := range hops {
			if !CanTransition(workflow, trip.Status, hop.to, hop.role) {
				t.Fatalf("%s: table rejects %s -> %s by %s", workflow, trip.Status, hop.to, hop.role)
			}
			updated, _, err := Apply(trip, hop.to, hop.role, time.Now())
			if err != nil {
				t.Fatalf("%s: %s -> %s by %s: %v", workflow, trip.Status, hop.to, hop.role, err)
			}
			if updated.Status != hop.to {
				t.Fatalf("%s: applied status %s, want %s", workflow, updated.Status, hop.to)
			}
			trip = updated
		}
		if trip.Status != domain.StatusCompleted {
			t.Errorf("%s: path did not end completed", workflow)
		}
	}
}

func TestApply_RejectsIllegalMove(t *testing.T) {
	t.Parallel()

	trip := newTrip(domain.WorkflowRide, domain.StatusPending)

	_, _, err := Apply(trip, domain.StatusCompleted, domain.RoleDriver, time.Now())
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidTransitionError", err)
	}
	if invalid.From != domain.StatusPending || invalid.To != domain.StatusCompleted || invalid.Role != domain.RoleDriver {
		t.Errorf("error diagnostics incomplete: %+v", invalid)
	}
}

func TestApply_RejectsWrongRole(t *testing.T) {
	t.Parallel()

	// Only the vendor can confirm at the vendor counter.
	trip := newTrip(domain.WorkflowDelivery, domain.StatusArrivedAtVendor)
	if _, _, err := Apply(trip, domain.StatusVendorConfirmed, domain.RoleDriver, time.Now()); err == nil {
		t.Error("driver should not be able to vendor-confirm")
	}
	if _, _, err := Apply(trip, domain.StatusVendorConfirmed, domain.RoleVendor, time.Now()); err != nil {
		t.Errorf("vendor confirm failed: %v", err)
	}
}

func TestApply_TerminalStatusesAcceptNothing(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.Status{
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusFareDeclined,
	} {
		trip := newTrip(domain.WorkflowRide, status)
		for _, role := range []domain.Role{domain.RolePassenger, domain.RoleDriver, domain.RoleDispatcher} {
			if _, _, err := Apply(trip, domain.StatusCancelled, role, time.Now()); err == nil {
				t.Errorf("terminal %s accepted a transition by %s", status, role)
			}
		}
	}
}

func TestApply_CancellableFromAnyNonTerminalStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []domain.Status{
		domain.StatusPending,
		domain.StatusAssigned,
		domain.StatusEnroute,
	} {
		trip := newTrip(domain.WorkflowRide, status)
		updated, _, err := Apply(trip, domain.StatusCancelled, domain.RolePassenger, time.Now())
		if err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if updated.CancelledAt.IsZero() {
			t.Errorf("cancel from %s: CancelledAt not stamped", status)
		}
	}
}

func TestApply_DriverCannotCancelUnclaimedTrip(t *testing.T) {
	t.Parallel()

	trip := newTrip(domain.WorkflowRide, domain.StatusPending)
	if _, _, err := Apply(trip, domain.StatusCancelled, domain.RoleDriver, time.Now()); err == nil {
		t.Error("driver cancelled a trip still pending assignment")
	}
}

func TestApply_DeclinedShareContinuesSolo(t *testing.T) {
	t.Parallel()

	trip := newTrip(domain.WorkflowRideShare, domain.StatusRideSharePending)

	declined, _, err := Apply(trip, domain.StatusRideShareDeclined, domain.RolePassenger, time.Now())
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	ongoing, _, err := Apply(declined, domain.StatusRideOngoing, domain.RoleDriver, time.Now())
	if err != nil {
		t.Fatalf("continue after decline: %v", err)
	}
	if ongoing.Status != domain.StatusRideOngoing {
		t.Errorf("status = %s, want ride_ongoing", ongoing.Status)
	}
}

func TestEffects_Enumerated(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		workflow domain.Workflow
		from     domain.Status
		to       domain.Status
		role     domain.Role
		want     []Effect
	}{
		{
			name:     "assignment flips driver on trip",
			workflow: domain.WorkflowRide,
			from:     domain.StatusPending,
			to:       domain.StatusAssigned,
			role:     domain.RoleDispatcher,
			want:     []Effect{EffectDriverOnTrip},
		},
		{
			name:     "vendor confirmation issues pickup code",
			workflow: domain.WorkflowDelivery,
			from:     domain.StatusArrivedAtVendor,
			to:       domain.StatusVendorConfirmed,
			role:     domain.RoleVendor,
			want:     []Effect{EffectIssuePickupCode},
		},
		{
			name:     "second pickup recalculates fare",
			workflow: domain.WorkflowRideShare,
			from:     domain.StatusRideShareApproved,
			to:       domain.StatusPassengerBPickup,
			role:     domain.RoleDriver,
			want:     []Effect{EffectRecalculateFare},
		},
		{
			name:     "completion frees driver and settles",
			workflow: domain.WorkflowRide,
			from:     domain.StatusEnroute,
			to:       domain.StatusCompleted,
			role:     domain.RoleDriver,
			want:     []Effect{EffectDriverAvailable, EffectSettleTrip},
		},
		{
			name:     "cancellation after assignment frees driver",
			workflow: domain.WorkflowRide,
			from:     domain.StatusAssigned,
			to:       domain.StatusCancelled,
			role:     domain.RolePassenger,
			want:     []Effect{EffectDriverAvailable},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trip := newTrip(tc.workflow, tc.from)
			_, effects, err := Apply(trip, tc.to, tc.role, time.Now())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(effects) != len(tc.want) {
				t.Fatalf("effects = %v, want %v", effects, tc.want)
			}
			for i := range effects {
				if effects[i] != tc.want[i] {
					t.Errorf("effects[%d] = %s, want %s", i, effects[i], tc.want[i])
				}
			}
		})
	}
}

func TestEffects_CancelBeforeAssignmentDoesNotFreeDriver(t *testing.T) {
	t.Parallel()

	trip := newTrip(domain.WorkflowRide, domain.StatusPending)
	trip.DriverID = ""

	_, effects, err := Apply(trip, domain.StatusCancelled, domain.RolePassenger, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effects) != 0 {
		t.Errorf("effects = %v, want none before a driver holds the trip", effects)
	}
}

func TestInitial(t *testing.T) {
	t.Parallel()

	if Initial(domain.WorkflowNegotiatedRide) != domain.StatusFareNegotiation {
		t.Error("negotiated ride must start in fare_negotiation")
	}
	if Initial(domain.WorkflowDelivery) != domain.StatusPending {
		t.Error("delivery must start pending")
	}
}
