package handler

import (
	"trike/internal/domain"
	"trike/internal/service"
)

// Each workflow command is a typed request decoded into explicit fields;
// there is no string-keyed action dispatch. Unknown statuses and roles are
// rejected before the service layer sees them.

// TransitionCommand is the body of a trip transition request.
type TransitionCommand struct {
	ToStatus         string   `json:"to_status" binding:"required"`
	Role             string   `json:"role" binding:"required"`
	ActorID          string   `json:"actor_id"`
	Fare             *float64 `json:"fare"`
	ActualPassengers *int     `json:"actual_passengers"`
}

// CancelCommand is the body of a trip cancellation request.
type CancelCommand struct {
	Role    string `json:"role" binding:"required"`
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

var knownStatuses = map[domain.Status]bool{
	domain.StatusPending:           true,
	domain.StatusAssigned:          true,
	domain.StatusEnroute:           true,
	domain.StatusCompleted:         true,
	domain.StatusCancelled:         true,
	domain.StatusFareNegotiation:   true,
	domain.StatusFareProposed:      true,
	domain.StatusFareAccepted:      true,
	domain.StatusFareDeclined:      true,
	domain.StatusConfirmed:         true,
	domain.StatusDriverAssigned:    true,
	domain.StatusPassengerAPickup:  true,
	domain.StatusRideSharePending:  true,
	domain.StatusRideShareApproved: true,
	domain.StatusRideShareDeclined: true,
	domain.StatusPassengerBPickup:  true,
	domain.StatusRideOngoing:       true,
	domain.StatusDriverEnRoute:     true,
	domain.StatusArrivedAtVendor:   true,
	domain.StatusVendorConfirmed:   true,
	domain.StatusPickupVerified:    true,
	domain.StatusOnTheWay:          true,
	domain.StatusArrivedAtCustomer: true,
	domain.StatusDelivered:         true,
	domain.StatusErrandOngoing:     true,
}

// parseStatus validates a status string from the wire.
func parseStatus(s string) (domain.Status, error) {
	status := domain.Status(s)
	if !knownStatuses[status] {
		return "", service.ErrInvalidStatus
	}
	return status, nil
}

// parseRole validates a role string from the wire.
func parseRole(s string) (domain.Role, error) {
	role := domain.Role(s)
	switch role {
	case domain.RolePassenger, domain.RoleDriver, domain.RoleVendor, domain.RoleDispatcher:
		return role, nil
	default:
		return "", service.ErrInvalidRole
	}
}

// toTransitionRequest converts a validated command into the service request.
func (cmd TransitionCommand) toTransitionRequest(tripID string) (service.TransitionRequest, error) {
	status, err := parseStatus(cmd.ToStatus)
	if err != nil {
		return service.TransitionRequest{}, err
	}
	role, err := parseRole(cmd.Role)
	if err != nil {
		return service.TransitionRequest{}, err
	}
	return service.TransitionRequest{
		TripID:           tripID,
		ToStatus:         status,
		Role:             role,
		ActorID:          cmd.ActorID,
		Fare:             cmd.Fare,
		ActualPassengers: cmd.ActualPassengers,
	}, nil
}
