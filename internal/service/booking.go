package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"trike/internal/domain"
	"trike/internal/fare"
	"trike/internal/geo"
	"trike/internal/repository"
	"trike/internal/statemachine"
)

// BookingService creates trips and answers fare quotes.
type BookingService struct {
	tripRepo repository.TripRepository
	userRepo repository.UserRepository
}

// NewBookingService creates a new BookingService.
func NewBookingService(tripRepo repository.TripRepository, userRepo repository.UserRepository) *BookingService {
	return &BookingService{
		tripRepo: tripRepo,
		userRepo: userRepo,
	}
}

// CreateTripRequest contains the parameters for booking a trip.
type CreateTripRequest struct {
	Workflow           domain.Workflow
	PassengerID        string
	PickupLat          float64
	PickupLng          float64
	PickupAddress      string
	DestinationLat     float64
	DestinationLng     float64
	DestinationAddress string
	VehicleType        domain.VehicleType
	DeclaredPassengers int
	DeclaredFare       float64
	PaymentMethod      domain.PaymentMethod
	// Errand bookings are priced up front from distance and duration.
	ErrandMinutes int
}

// CreateTrip validates the request and persists a new trip in its
// workflow's initial status.
func (s *BookingService) CreateTrip(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if !isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return nil, ErrInvalidPickupLocation
	}
	if !isValidLatitude(req.DestinationLat) || !isValidLongitude(req.DestinationLng) {
		return nil, ErrInvalidDestinationLocation
	}
	if req.DeclaredFare < 0 {
		return nil, ErrInvalidFare
	}

	switch req.Workflow {
	case domain.WorkflowRide, domain.WorkflowNegotiatedRide, domain.WorkflowRideShare,
		domain.WorkflowDelivery, domain.WorkflowErrand:
	default:
		return nil, ErrInvalidWorkflow
	}

	switch req.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodWallet, domain.PaymentMethodEWallet:
	case "":
		req.PaymentMethod = domain.PaymentMethodCash
	default:
		return nil, ErrInvalidPaymentMethod
	}

	vehicleType := req.VehicleType
	if vehicleType == "" {
		vehicleType = domain.VehicleTricycle
	}

	declaredPassengers := req.DeclaredPassengers
	if req.Workflow == domain.WorkflowRideShare {
		if declaredPassengers < 1 {
			return nil, ErrInvalidPassengerCount
		}
	} else if declaredPassengers == 0 {
		declaredPassengers = 1
	}

	// Passenger must exist; the tier on file drives the completion discount.
	if _, err := s.userRepo.GetByID(ctx, req.PassengerID); err != nil {
		return nil, err
	}

	declaredFare := req.DeclaredFare
	if req.Workflow == domain.WorkflowErrand {
		distanceKm := geo.DistanceKm(req.PickupLat, req.PickupLng, req.DestinationLat, req.DestinationLng)
		declaredFare = fare.PriceErrand(distanceKm, req.ErrandMinutes).Total
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:                 uuid.New().String(),
		Workflow:           req.Workflow,
		PassengerID:        req.PassengerID,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		DestinationLat:     req.DestinationLat,
		DestinationLng:     req.DestinationLng,
		DestinationAddress: req.DestinationAddress,
		VehicleType:        vehicleType,
		DeclaredPassengers: declaredPassengers,
		DeclaredFare:       declaredFare,
		PaymentMethod:      req.PaymentMethod,
		Status:             statemachine.Initial(req.Workflow),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (s *BookingService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

// ListTrips retrieves recent trips.
func (s *BookingService) ListTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// GetHistory returns a trip's status transition history, oldest first.
func (s *BookingService) GetHistory(ctx context.Context, tripID string) ([]*domain.StatusChange, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.tripRepo.History(ctx, tripID)
}

// QuotePickupRequest asks what a ride would cost given a candidate driver's
// position.
type QuotePickupRequest struct {
	DeclaredFare float64
	DriverLat    float64
	DriverLng    float64
	PickupLat    float64
	PickupLng    float64
}

// QuotePickup prices the pickup surcharge for a driver-passenger pair. A
// pickup beyond the surcharge table returns a quote flagged as requiring
// fare negotiation, not an error.
func (s *BookingService) QuotePickup(req QuotePickupRequest) (*domain.FareQuote, error) {
	if req.DeclaredFare < 0 {
		return nil, ErrInvalidFare
	}
	if !isValidLatitude(req.DriverLat) || !isValidLongitude(req.DriverLng) ||
		!isValidLatitude(req.PickupLat) || !isValidLongitude(req.PickupLng) {
		return nil, ErrInvalidLocation
	}

	distanceKm := geo.DistanceKm(req.DriverLat, req.DriverLng, req.PickupLat, req.PickupLng)
	quote := fare.QuoteRide(req.DeclaredFare, distanceKm)
	return &quote, nil
}

// QuoteErrand prices an errand from its distance and estimated duration.
func (s *BookingService) QuoteErrand(distanceKm float64, minutes int) (*fare.ErrandQuote, error) {
	if distanceKm < 0 || minutes < 0 {
		return nil, ErrInvalidFare
	}
	quote := fare.PriceErrand(distanceKm, minutes)
	return &quote, nil
}

// QuoteVendorFees computes the platform fee breakdown for a vendor order.
func (s *BookingService) QuoteVendorFees(subtotal float64) (*fare.VendorFees, error) {
	if subtotal < 0 {
		return nil, ErrInvalidSubtotal
	}
	fees := fare.VendorOrderFees(subtotal)
	return &fees, nil
}
