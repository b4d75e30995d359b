package handler

import (
	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// TripHandler handles HTTP requests for trip transitions.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID                 string  `json:"id"`
	Workflow           string  `json:"workflow"`
	PassengerID        string  `json:"passenger_id"`
	DriverID           string  `json:"driver_id,omitempty"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupAddress      string  `json:"pickup_address,omitempty"`
	DestinationLat     float64 `json:"destination_lat"`
	DestinationLng     float64 `json:"destination_lng"`
	DestinationAddress string  `json:"destination_address,omitempty"`
	VehicleType        string  `json:"vehicle_type"`
	DeclaredPassengers int     `json:"declared_passengers,omitempty"`
	ActualPassengers   int     `json:"actual_passengers,omitempty"`
	DeclaredFare       float64 `json:"declared_fare"`
	AgreedFare         float64 `json:"agreed_fare,omitempty"`
	FinalFare          float64 `json:"final_fare,omitempty"`
	PaymentMethod      string  `json:"payment_method"`
	Status             string  `json:"status"`
	PickupCode         string  `json:"pickup_code,omitempty"`
	CancelReason       string  `json:"cancel_reason,omitempty"`
	CreatedAt          string  `json:"created_at"`
	AssignedAt         string  `json:"assigned_at,omitempty"`
	CompletedAt        string  `json:"completed_at,omitempty"`
	CancelledAt        string  `json:"cancelled_at,omitempty"`
}

const timeFormat = "2006-01-02T15:04:05Z07:00"

func toTripResponse(trip *domain.Trip) TripResponse {
	resp := TripResponse{
		ID:                 trip.ID,
		Workflow:           string(trip.Workflow),
		PassengerID:        trip.PassengerID,
		DriverID:           trip.DriverID,
		PickupLat:          trip.PickupLat,
		PickupLng:          trip.PickupLng,
		PickupAddress:      trip.PickupAddress,
		DestinationLat:     trip.DestinationLat,
		DestinationLng:     trip.DestinationLng,
		DestinationAddress: trip.DestinationAddress,
		VehicleType:        string(trip.VehicleType),
		DeclaredPassengers: trip.DeclaredPassengers,
		ActualPassengers:   trip.ActualPassengers,
		DeclaredFare:       trip.DeclaredFare,
		AgreedFare:         trip.AgreedFare,
		FinalFare:          trip.FinalFare,
		PaymentMethod:      string(trip.PaymentMethod),
		Status:             string(trip.Status),
		PickupCode:         trip.PickupCode,
		CancelReason:       trip.CancelReason,
		CreatedAt:          trip.CreatedAt.Format(timeFormat),
	}

	if !trip.AssignedAt.IsZero() {
		resp.AssignedAt = trip.AssignedAt.Format(timeFormat)
	}
	if !trip.CompletedAt.IsZero() {
		resp.CompletedAt = trip.CompletedAt.Format(timeFormat)
	}
	if !trip.CancelledAt.IsZero() {
		resp.CancelledAt = trip.CancelledAt.Format(timeFormat)
	}

	return resp
}

// Transition handles POST /v1/trips/:id/transition
func (h *TripHandler) Transition(c *gin.Context) {
	var cmd TransitionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondError(c, service.ErrInvalidStatus)
		return
	}

	req, err := cmd.toTransitionRequest(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.Transition(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toTripResponse(trip))
}

// Cancel handles POST /v1/trips/:id/cancel
func (h *TripHandler) Cancel(c *gin.Context) {
	var cmd CancelCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondError(c, service.ErrInvalidRole)
		return
	}

	role, err := parseRole(cmd.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	trip, err := h.tripService.Transition(c.Request.Context(), service.TransitionRequest{
		TripID:       c.Param("id"),
		ToStatus:     domain.StatusCancelled,
		Role:         role,
		ActorID:      cmd.ActorID,
		CancelReason: cmd.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toTripResponse(trip))
}
