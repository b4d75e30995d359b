package handler

import (
	"github.com/gin-gonic/gin"

	"trike/internal/service"
)

// DispatchHandler handles HTTP requests for driver dispatch.
type DispatchHandler struct {
	dispatchService *service.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(dispatchService *service.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

// DispatchRequest is the HTTP request body for dispatching a trip.
type DispatchRequest struct {
	RadiusKm float64 `json:"radius_km"`
}

// DispatchResponse is the result of a successful dispatch.
type DispatchResponse struct {
	DriverID string              `json:"driver_id"`
	Trip     TripResponse        `json:"trip"`
	Quote    PickupQuoteResponse `json:"quote"`
}

// Dispatch handles POST /v1/trips/:id/dispatch
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	// Body is optional; an empty body uses the default radius.
	_ = c.ShouldBindJSON(&req)

	result, err := h.dispatchService.Dispatch(c.Request.Context(), service.DispatchRequest{
		TripID:   c.Param("id"),
		RadiusKm: req.RadiusKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, DispatchResponse{
		DriverID: result.DriverID,
		Trip:     toTripResponse(result.Trip),
		Quote: PickupQuoteResponse{
			BaseFare:           result.Quote.BaseFare,
			PickupDistanceKm:   result.Quote.PickupDistanceKm,
			PickupSurcharge:    result.Quote.PickupSurcharge,
			Total:              result.Quote.Total,
			CustomFareRequired: result.Quote.CustomFareRequired,
		},
	})
}
