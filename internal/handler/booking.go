package handler

import (
	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// BookingHandler handles HTTP requests for trip creation and quotes.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateTripRequest is the HTTP request body for booking a trip.
type CreateTripRequest struct {
	Workflow           string  `json:"workflow" binding:"required"`
	PassengerID        string  `json:"passenger_id" binding:"required"`
	PickupLat          float64 `json:"pickup_lat"`
	PickupLng          float64 `json:"pickup_lng"`
	PickupAddress      string  `json:"pickup_address"`
	DestinationLat     float64 `json:"destination_lat"`
	DestinationLng     float64 `json:"destination_lng"`
	DestinationAddress string  `json:"destination_address"`
	VehicleType        string  `json:"vehicle_type"`
	DeclaredPassengers int     `json:"declared_passengers"`
	DeclaredFare       float64 `json:"declared_fare"`
	PaymentMethod      string  `json:"payment_method"`
	ErrandMinutes      int     `json:"errand_minutes"`
}

// CreateTrip handles POST /v1/trips
func (h *BookingHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidWorkflow)
		return
	}

	trip, err := h.bookingService.CreateTrip(c.Request.Context(), service.CreateTripRequest{
		Workflow:           domain.Workflow(req.Workflow),
		PassengerID:        req.PassengerID,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		DestinationLat:     req.DestinationLat,
		DestinationLng:     req.DestinationLng,
		DestinationAddress: req.DestinationAddress,
		VehicleType:        domain.VehicleType(req.VehicleType),
		DeclaredPassengers: req.DeclaredPassengers,
		DeclaredFare:       req.DeclaredFare,
		PaymentMethod:      domain.PaymentMethod(req.PaymentMethod),
		ErrandMinutes:      req.ErrandMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *BookingHandler) GetTrip(c *gin.Context) {
	trip, err := h.bookingService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *BookingHandler) GetAll(c *gin.Context) {
	trips, err := h.bookingService.ListTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	respondOK(c, response)
}

// StatusChangeResponse is one entry of a trip's transition history.
type StatusChangeResponse struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	Role       string `json:"role"`
	ChangedAt  string `json:"changed_at"`
}

// GetHistory handles GET /v1/trips/:id/history
func (h *BookingHandler) GetHistory(c *gin.Context) {
	history, err := h.bookingService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]StatusChangeResponse, 0, len(history))
	for _, change := range history {
		response = append(response, StatusChangeResponse{
			FromStatus: string(change.FromStatus),
			ToStatus:   string(change.ToStatus),
			Role:       string(change.Role),
			ChangedAt:  change.ChangedAt.Format(timeFormat),
		})
	}

	respondOK(c, response)
}

// PickupQuoteRequest is the HTTP request body for a pickup surcharge quote.
type PickupQuoteRequest struct {
	DeclaredFare float64 `json:"declared_fare"`
	DriverLat    float64 `json:"driver_lat"`
	DriverLng    float64 `json:"driver_lng"`
	PickupLat    float64 `json:"pickup_lat"`
	PickupLng    float64 `json:"pickup_lng"`
}

// PickupQuoteResponse is the fare breakdown for a driver-passenger pair.
type PickupQuoteResponse struct {
	BaseFare           float64 `json:"base_fare"`
	PickupDistanceKm   float64 `json:"pickup_distance_km"`
	PickupSurcharge    float64 `json:"pickup_surcharge"`
	Total              float64 `json:"total"`
	CustomFareRequired bool    `json:"custom_fare_required"`
}

// QuotePickup handles POST /v1/quotes/pickup
func (h *BookingHandler) QuotePickup(c *gin.Context) {
	var req PickupQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidLocation)
		return
	}

	quote, err := h.bookingService.QuotePickup(service.QuotePickupRequest{
		DeclaredFare: req.DeclaredFare,
		DriverLat:    req.DriverLat,
		DriverLng:    req.DriverLng,
		PickupLat:    req.PickupLat,
		PickupLng:    req.PickupLng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, PickupQuoteResponse{
		BaseFare:           quote.BaseFare,
		PickupDistanceKm:   quote.PickupDistanceKm,
		PickupSurcharge:    quote.PickupSurcharge,
		Total:              quote.Total,
		CustomFareRequired: quote.CustomFareRequired,
	})
}

// ErrandQuoteRequest is the HTTP request body for an errand quote.
type ErrandQuoteRequest struct {
	DistanceKm float64 `json:"distance_km"`
	Minutes    int     `json:"minutes"`
}

// ErrandQuoteResponse is the errand price breakdown.
type ErrandQuoteResponse struct {
	BaseFee           float64 `json:"base_fee"`
	DistanceSurcharge float64 `json:"distance_surcharge"`
	TimeSurcharge     float64 `json:"time_surcharge"`
	Total             float64 `json:"total"`
	Commission        float64 `json:"commission"`
	DriverEarnings    float64 `json:"driver_earnings"`
}

// QuoteErrand handles POST /v1/quotes/errand
func (h *BookingHandler) QuoteErrand(c *gin.Context) {
	var req ErrandQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidFare)
		return
	}

	quote, err := h.bookingService.QuoteErrand(req.DistanceKm, req.Minutes)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, ErrandQuoteResponse{
		BaseFee:           quote.BaseFee,
		DistanceSurcharge: quote.DistanceSurcharge,
		TimeSurcharge:     quote.TimeSurcharge,
		Total:             quote.Total,
		Commission:        quote.Commission,
		DriverEarnings:    quote.DriverEarnings,
	})
}

// VendorFeesRequest is the HTTP request body for vendor order fees.
type VendorFeesRequest struct {
	Subtotal float64 `json:"subtotal"`
}

// VendorFeesResponse is the platform fee breakdown for a vendor order.
type VendorFeesResponse struct {
	Commission          float64 `json:"commission"`
	CustomerDeliveryFee float64 `json:"customer_delivery_fee"`
	DriverFee           float64 `json:"driver_fee"`
}

// QuoteVendorFees handles POST /v1/quotes/vendor-fees
func (h *BookingHandler) QuoteVendorFees(c *gin.Context) {
	var req VendorFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidSubtotal)
		return
	}

	fees, err := h.bookingService.QuoteVendorFees(req.Subtotal)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, VendorFeesResponse{
		Commission:          fees.Commission,
		CustomerDeliveryFee: fees.CustomerDeliveryFee,
		DriverFee:           fees.DriverFee,
	})
}
