package domain

import "time"

// Workflow identifies which trip family a trip belongs to. Each workflow
// has its own status machine.
type Workflow string

const (
	WorkflowRide           Workflow = "ride"
	WorkflowNegotiatedRide Workflow = "negotiated_ride"
	WorkflowRideShare      Workflow = "ride_share"
	WorkflowDelivery       Workflow = "delivery"
	WorkflowErrand         Workflow = "errand"
)

// Status represents the current status of a trip. The full set spans all
// workflows; which statuses are reachable depends on the trip's workflow.
type Status string

const (
	// Generic ride.
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusEnroute   Status = "enroute"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	// Fare-negotiated ride.
	StatusFareNegotiation Status = "fare_negotiation"
	StatusFareProposed    Status = "fare_proposed"
	StatusFareAccepted    Status = "fare_accepted"
	StatusFareDeclined    Status = "fare_declined"
	StatusConfirmed       Status = "confirmed"

	// Tricycle ride-share.
	StatusDriverAssigned    Status = "driver_assigned"
	StatusPassengerAPickup  Status = "passenger_a_pickup"
	StatusRideSharePending  Status = "ride_share_pending"
	StatusRideShareApproved Status = "ride_share_approved"
	StatusRideShareDeclined Status = "ride_share_declined"
	StatusPassengerBPickup  Status = "passenger_b_pickup"
	StatusRideOngoing       Status = "ride_ongoing"

	// Delivery.
	StatusDriverEnRoute     Status = "driver_en_route"
	StatusArrivedAtVendor   Status = "arrived_at_vendor"
	StatusVendorConfirmed   Status = "vendor_confirmed"
	StatusPickupVerified    Status = "pickup_verified"
	StatusOnTheWay          Status = "on_the_way"
	StatusArrivedAtCustomer Status = "arrived_at_customer"
	StatusDelivered         Status = "delivered"

	// Errand.
	StatusErrandOngoing Status = "errand_ongoing"
)

// Role identifies who is performing a transition.
type Role string

const (
	RolePassenger  Role = "passenger"
	RoleDriver     Role = "driver"
	RoleVendor     Role = "vendor"
	RoleDispatcher Role = "dispatcher"
)

// PaymentMethod represents how a trip's fare is paid.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodWallet  PaymentMethod = "wallet"
	PaymentMethodEWallet PaymentMethod = "e_wallet"
)

// IsCash reports whether the fare is handed to the driver out of band.
func (m PaymentMethod) IsCash() bool {
	return m == PaymentMethodCash
}

// VehicleType represents the vehicle requested for a trip.
type VehicleType string

const (
	VehicleTricycle   VehicleType = "tricycle"
	VehicleMotorcycle VehicleType = "motorcycle"
)

// Trip represents a single ride/delivery/errand engagement. A trip is
// created on booking and mutated only through validated status transitions;
// it is never deleted, only status-terminated.
type Trip struct {
	ID                 string
	Workflow           Workflow
	PassengerID        string
	DriverID           string // empty until assigned
	PickupLat          float64
	PickupLng          float64
	PickupAddress      string
	DestinationLat     float64
	DestinationLng     float64
	DestinationAddress string
	VehicleType        VehicleType
	DeclaredPassengers int
	ActualPassengers   int
	DeclaredFare       float64
	AgreedFare         float64
	FinalFare          float64 // set only once status reaches completed
	PaymentMethod      PaymentMethod
	Status             Status
	PickupCode         string // issued on vendor confirmation (delivery)
	CancelReason       string
	CreatedAt          time.Time
	AssignedAt         time.Time
	CompletedAt        time.Time
	CancelledAt        time.Time
	UpdatedAt          time.Time
}

// StatusChange is one entry in a trip's append-only transition history.
type StatusChange struct {
	TripID     string
	FromStatus Status
	ToStatus   Status
	Role       Role
	ChangedAt  time.Time
}
