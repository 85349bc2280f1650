package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Valid reports whether s is a known trip status.
func (s TripStatus) Valid() bool {
	switch s {
	case TripStatusActive, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip is a customer-declared travel window under which bookings are made.
// Only its status changes after creation.
type Trip struct {
	ID           string
	UserID       string
	City         string
	BaseLocation string
	StartDate    string
	EndDate      string
	Purpose      string
	Notes        string
	Status       TripStatus
	CreatedAt    time.Time
}
