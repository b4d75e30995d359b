package service

import (
	"errors"
	"fmt"

	"trike/internal/domain"
)

// AlreadyInStateError is returned when a transition is re-requested after
// the trip already reached the target status, usually a retried command
// racing its own earlier success.
type AlreadyInStateError struct {
	TripID string
	Status domain.Status
}

func (e *AlreadyInStateError) Error() string {
	return fmt.Sprintf("trip %s already in state %s", e.TripID, e.Status)
}

var (
	// ErrNoDriverAvailable is returned when no driver can be dispatched.
	ErrNoDriverAvailable = errors.New("no driver available")

	// ErrTripNotDispatchable is returned when trying to dispatch a trip
	// that has left its initial state.
	ErrTripNotDispatchable = errors.New("trip not awaiting dispatch")

	// ErrInvalidPassengerID is returned when the passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidTripID is returned when the trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidWorkflow is returned when the workflow is unknown.
	ErrInvalidWorkflow = errors.New("invalid workflow")

	// ErrInvalidStatus is returned when the requested status is unknown.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidRole is returned when the acting role is unknown.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidPickupLocation is returned when pickup coordinates are invalid.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDestinationLocation is returned when destination coordinates are invalid.
	ErrInvalidDestinationLocation = errors.New("invalid destination location")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidFare is returned when a declared fare is negative.
	ErrInvalidFare = errors.New("invalid fare")

	// ErrInvalidPassengerCount is returned when a passenger count is not positive.
	ErrInvalidPassengerCount = errors.New("invalid passenger count")

	// ErrInvalidPaymentMethod is returned when the payment method is unknown.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrDriverHasActiveTrip is returned when the driver already holds a trip.
	ErrDriverHasActiveTrip = errors.New("driver already has an active trip")

	// ErrTripNotCompleted is returned when settling a trip that has not
	// reached the completed state.
	ErrTripNotCompleted = errors.New("trip not completed")

	// ErrInvalidTopUpAmount is returned when a top-up amount is not positive.
	ErrInvalidTopUpAmount = errors.New("invalid top-up amount")

	// ErrInvalidWeekWindow is returned when a week window is malformed.
	ErrInvalidWeekWindow = errors.New("invalid week window")

	// ErrInvalidUserID is returned when the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidSubtotal is returned when a vendor-order subtotal is negative.
	ErrInvalidSubtotal = errors.New("invalid order subtotal")
)

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
