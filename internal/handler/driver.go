package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"trike/internal/domain"
	"trike/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService    *service.DriverService
	incentiveService *service.IncentiveService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService, incentiveService *service.IncentiveService) *DriverHandler {
	return &DriverHandler{
		driverService:    driverService,
		incentiveService: incentiveService,
	}
}

// DriverResponse is the HTTP representation of a driver.
type DriverResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	VehicleType string `json:"vehicle_type"`
}

func toDriverResponse(driver *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:          driver.ID,
		Name:        driver.Name,
		Phone:       driver.Phone,
		Status:      string(driver.Status),
		VehicleType: string(driver.VehicleType),
	}
}

// RegisterDriverRequest is the HTTP request body for registering a driver.
type RegisterDriverRequest struct {
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	VehicleType string `json:"vehicle_type"`
}

// Register handles POST /v1/drivers
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidDriverID)
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), service.RegisterDriverRequest{
		Name:        req.Name,
		Phone:       req.Phone,
		VehicleType: domain.VehicleType(req.VehicleType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, toDriverResponse(driver))
}

// Get handles GET /v1/drivers/:id
func (h *DriverHandler) Get(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toDriverResponse(driver))
}

// GetAll handles GET /v1/drivers. The optional status=available filter
// serves the list from the Redis availability set.
func (h *DriverHandler) GetAll(c *gin.Context) {
	var (
		drivers []*domain.Driver
		err     error
	)
	if c.Query("status") == string(domain.DriverStatusAvailable) {
		drivers, err = h.driverService.ListAvailableDrivers(c.Request.Context())
	} else {
		drivers, err = h.driverService.ListDrivers(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		response = append(response, toDriverResponse(driver))
	}

	respondOK(c, response)
}

// UpdateLocationRequest is the HTTP request body for a location ping.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation handles PUT /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidLocation)
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: c.Param("id"),
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"driver_id": c.Param("id")})
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.driverService.SetDriverOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"driver_id": c.Param("id"), "status": string(domain.DriverStatusOffline)})
}

// GetActiveTrip handles GET /v1/drivers/:id/trip
func (h *DriverHandler) GetActiveTrip(c *gin.Context) {
	trip, err := h.driverService.GetActiveTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if trip == nil {
		respondOK(c, nil)
		return
	}

	respondOK(c, toTripResponse(trip))
}

// IncentiveRecordResponse is the HTTP representation of a weekly incentive
// evaluation.
type IncentiveRecordResponse struct {
	ID          string  `json:"id"`
	DriverID    string  `json:"driver_id"`
	WeekStart   string  `json:"week_start"`
	WeekEnd     string  `json:"week_end"`
	TripCount   int     `json:"trip_count"`
	Earnings    float64 `json:"earnings"`
	AwardedTier string  `json:"awarded_tier,omitempty"`
	Reward      float64 `json:"reward"`
}

func toIncentiveResponse(record *domain.DriverIncentiveRecord) IncentiveRecordResponse {
	return IncentiveRecordResponse{
		ID:          record.ID,
		DriverID:    record.DriverID,
		WeekStart:   record.WeekStart.Format(timeFormat),
		WeekEnd:     record.WeekEnd.Format(timeFormat),
		TripCount:   record.TripCount,
		Earnings:    record.Earnings,
		AwardedTier: string(record.AwardedTier),
		Reward:      record.Reward,
	}
}

// EvaluateIncentiveRequest is the HTTP request body for a weekly evaluation.
type EvaluateIncentiveRequest struct {
	WeekStart string `json:"week_start" binding:"required"` // RFC 3339
}

// EvaluateIncentive handles POST /v1/drivers/:id/incentives/evaluate
func (h *DriverHandler) EvaluateIncentive(c *gin.Context) {
	var req EvaluateIncentiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidWeekWindow)
		return
	}

	weekStart, err := time.Parse(time.RFC3339, req.WeekStart)
	if err != nil {
		respondError(c, service.ErrInvalidWeekWindow)
		return
	}

	record, err := h.incentiveService.EvaluateWeek(c.Request.Context(), service.EvaluateWeekRequest{
		DriverID:  c.Param("id"),
		WeekStart: weekStart,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, toIncentiveResponse(record))
}

// GetIncentives handles GET /v1/drivers/:id/incentives
func (h *DriverHandler) GetIncentives(c *gin.Context) {
	records, err := h.incentiveService.GetDriverRecords(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]IncentiveRecordResponse, 0, len(records))
	for _, record := range records {
		response = append(response, toIncentiveResponse(record))
	}

	respondOK(c, response)
}
