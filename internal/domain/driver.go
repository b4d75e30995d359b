package domain

// DriverStatus represents the current availability of a driver.
type DriverStatus string

const (
	DriverStatusAvailable DriverStatus = "available"
	DriverStatusOffline   DriverStatus = "offline"
	DriverStatusOnTrip    DriverStatus = "on_trip"
)

// Driver represents a driver in the system.
type Driver struct {
	ID          string
	Name        string
	Phone       string
	Status      DriverStatus
	VehicleType VehicleType
}
