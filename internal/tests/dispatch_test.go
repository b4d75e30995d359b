package tests

import (
	"context"
	"testing"

	"trike/internal/domain"
	"trike/internal/redis"
	"trike/internal/service"
)

// Poblacion, roughly. Latitude offsets of 0.01 are about 1.1 km.
const (
	pickupLat = 14.5995
	pickupLng = 120.9842
)

func pendingRideTrip(id string) *domain.Trip {
	return &domain.Trip{
		ID:            id,
		Workflow:      domain.WorkflowRide,
		PassengerID:   "user-1",
		PickupLat:     pickupLat,
		PickupLng:     pickupLng,
		VehicleType:   domain.VehicleTricycle,
		DeclaredFare:  100,
		PaymentMethod: domain.PaymentMethodCash,
		Status:        domain.StatusPending,
	}
}

func newDispatchService(
	locationStore *MockLocationStore,
	lockStore *MockLockStore,
	driverRepo *MockDriverRepository,
	tripRepo *MockTripRepository,
) *service.DispatchService {
	return service.NewDispatchService(nil, locationStore, lockStore, nil, driverRepo, tripRepo, NewMockNotifier())
}

func TestDispatch_AssignsAvailableDriver(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	lockStore := NewMockLockStore()

	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	driverRepo.AddDriver(&domain.Driver{ID: "driver-busy", Status: domain.DriverStatusOnTrip, VehicleType: domain.VehicleTricycle})
	driverRepo.AddDriver(&domain.Driver{ID: "driver-free", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})

	// Busy driver is closer but must be skipped.
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-busy", Lat: pickupLat, Lng: pickupLng,
	})
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-free", Lat: pickupLat + 0.01, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, lockStore, driverRepo, tripRepo)

	result, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if result.DriverID != "driver-free" {
		t.Errorf("expected driver-free assigned, got %s", result.DriverID)
	}
	if result.Trip.Status != domain.StatusAssigned {
		t.Errorf("expected trip assigned, got %s", result.Trip.Status)
	}
	if result.Trip.DriverID != "driver-free" {
		t.Errorf("expected trip bound to driver-free, got %s", result.Trip.DriverID)
	}

	// ~1.1 km pickup distance carries no surcharge.
	if result.Quote.PickupSurcharge != 0 {
		t.Errorf("expected no surcharge, got %v", result.Quote.PickupSurcharge)
	}
	if result.Trip.AgreedFare != 100 {
		t.Errorf("expected agreed fare 100, got %v", result.Trip.AgreedFare)
	}

	if driverRepo.GetDriver("driver-free").Status != domain.DriverStatusOnTrip {
		t.Errorf("expected assigned driver on_trip, got %s", driverRepo.GetDriver("driver-free").Status)
	}
	if tripRepo.GetTrip("trip-1").Status != domain.StatusAssigned {
		t.Errorf("expected persisted trip assigned, got %s", tripRepo.GetTrip("trip-1").Status)
	}
}

func TestDispatch_SurchargeAddedToAgreedFare(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	lockStore := NewMockLockStore()

	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})

	// ~2.8 km out: the 20-peso surcharge band.
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-1", Lat: pickupLat + 0.025, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, lockStore, driverRepo, tripRepo)

	result, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	if result.Quote.PickupSurcharge != 20 {
		t.Errorf("expected surcharge 20, got %v", result.Quote.PickupSurcharge)
	}
	if result.Trip.AgreedFare != 120 {
		t.Errorf("expected agreed fare 120, got %v", result.Trip.AgreedFare)
	}
}

func TestDispatch_SkipsDriverBeyondSurchargeTable(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	lockStore := NewMockLockStore()

	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	driverRepo.AddDriver(&domain.Driver{ID: "driver-far", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})

	// ~5.6 km out: beyond the 4 km table, needs fare negotiation.
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-far", Lat: pickupLat + 0.05, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, lockStore, driverRepo, tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1", RadiusKm: 10})
	if err != service.ErrNoDriverAvailable {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
	if driverRepo.GetDriver("driver-far").Status != domain.DriverStatusAvailable {
		t.Error("far driver should remain available")
	}
}

func TestDispatch_NoDriversInRadius(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(pendingRideTrip("trip-1"))

	svc := newDispatchService(NewMockLocationStore(), NewMockLockStore(), NewMockDriverRepository(), tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrNoDriverAvailable {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
}

func TestDispatch_VehicleTypesDoNotMix(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()

	trip := pendingRideTrip("trip-1")
	trip.VehicleType = domain.VehicleMotorcycle
	tripRepo.AddTrip(trip)

	// Only a tricycle is nearby; the motorcycle request finds nobody.
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-1", Lat: pickupLat, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, NewMockLockStore(), driverRepo, tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrNoDriverAvailable {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
}

func TestDispatch_TripLockHeldByAnotherDispatcher(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	lockStore := NewMockLockStore()
	lockStore.ForceTripLockFailure = true

	svc := newDispatchService(NewMockLocationStore(), lockStore, NewMockDriverRepository(), tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrTripNotDispatchable {
		t.Fatalf("expected ErrTripNotDispatchable, got %v", err)
	}
}

func TestDispatch_DriverLockContention(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()
	lockStore := NewMockLockStore()
	lockStore.ForceDriverLockFailure = true

	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-1", Lat: pickupLat, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, lockStore, driverRepo, tripRepo)

	// Every candidate is locked by another dispatcher.
	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrNoDriverAvailable {
		t.Fatalf("expected ErrNoDriverAvailable, got %v", err)
	}
	if tripRepo.GetTrip("trip-1").Status != domain.StatusPending {
		t.Error("trip should remain pending")
	}
}

func TestDispatch_AlreadyAssignedTrip(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	trip := pendingRideTrip("trip-1")
	trip.Status = domain.StatusAssigned
	trip.DriverID = "driver-1"
	tripRepo.AddTrip(trip)

	svc := newDispatchService(NewMockLocationStore(), NewMockLockStore(), NewMockDriverRepository(), tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrTripNotDispatchable {
		t.Fatalf("expected ErrTripNotDispatchable, got %v", err)
	}
}

func TestDispatch_NegotiatedRideIsNotDispatched(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	trip := pendingRideTrip("trip-1")
	trip.Workflow = domain.WorkflowNegotiatedRide
	trip.Status = domain.StatusFareNegotiation
	tripRepo.AddTrip(trip)

	svc := newDispatchService(NewMockLocationStore(), NewMockLockStore(), NewMockDriverRepository(), tripRepo)

	_, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"})
	if err != service.ErrTripNotDispatchable {
		t.Fatalf("expected ErrTripNotDispatchable, got %v", err)
	}
}

func TestDispatch_StatusHistoryWritten(t *testing.T) {
	t.Parallel()

	tripRepo := NewMockTripRepository()
	driverRepo := NewMockDriverRepository()
	locationStore := NewMockLocationStore()

	tripRepo.AddTrip(pendingRideTrip("trip-1"))
	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Status: domain.DriverStatusAvailable, VehicleType: domain.VehicleTricycle})
	locationStore.AddDriverLocation(domain.VehicleTricycle, redis.DriverLocation{
		DriverID: "driver-1", Lat: pickupLat, Lng: pickupLng,
	})

	svc := newDispatchService(locationStore, NewMockLockStore(), driverRepo, tripRepo)

	if _, err := svc.Dispatch(context.Background(), service.DispatchRequest{TripID: "trip-1"}); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	history, _ := tripRepo.History(context.Background(), "trip-1")
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Role != domain.RoleDispatcher {
		t.Errorf("expected dispatcher role in history, got %s", history[0].Role)
	}
	if history[0].FromStatus != domain.StatusPending || history[0].ToStatus != domain.StatusAssigned {
		t.Errorf("unexpected history entry: %+v", history[0])
	}
}
