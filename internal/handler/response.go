package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trike/internal/ledger"
	"trike/internal/repository"
	"trike/internal/service"
	"trike/internal/statemachine"
)

// Envelope is the uniform response shape: success carries data, failure
// carries a message.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondOK sends a success envelope.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// respondCreated sends a success envelope with 201.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// respondError sends a failure envelope with the mapped HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, Envelope{Success: false, Message: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var invalidTransition *statemachine.InvalidTransitionError
	var invalidCommission *ledger.InvalidCommissionInputError
	var insufficientBalance *ledger.InsufficientBalanceError
	var alreadyInState *service.AlreadyInStateError

	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.As(err, &invalidCommission),
		errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidWorkflow),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDestinationLocation),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidFare),
		errors.Is(err, service.ErrInvalidPassengerCount),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidTopUpAmount),
		errors.Is(err, service.ErrInvalidWeekWindow),
		errors.Is(err, service.ErrInvalidSubtotal):
		return http.StatusBadRequest

	// Conflict errors
	case errors.As(err, &invalidTransition),
		errors.As(err, &alreadyInState),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, service.ErrDriverHasActiveTrip),
		errors.Is(err, service.ErrTripNotDispatchable),
		errors.Is(err, service.ErrTripNotCompleted):
		return http.StatusConflict

	// Business rule rejections the caller can resolve
	case errors.As(err, &insufficientBalance):
		return http.StatusUnprocessableEntity

	// Service unavailable
	case errors.Is(err, service.ErrNoDriverAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
