package domain

import "time"

// BookingStatus represents the lifecycle position of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusAccepted   BookingStatus = "ACCEPTED"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

// bookingTransitions lists the statuses reachable from each status.
// Re-applying the current status is always allowed and is not listed.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusAccepted, BookingStatusCancelled},
	BookingStatusAccepted:   {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted:  nil,
	BookingStatusCancelled:  nil,
}

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// Terminal reports whether no further transitions leave s.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Active reports whether a booking in s counts as an ongoing trip.
func (s BookingStatus) Active() bool {
	return s == BookingStatusAccepted || s == BookingStatusInProgress
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a ride request under a trip. FinalPrice is fixed at creation
// from the pricing inputs stored next to it.
type Booking struct {
	ID              string
	TripID          string
	UserID          string
	DriverID        string // empty until assigned
	DealerID        string // always the assigned driver's dealer
	BaseFare        float64
	EstimatedKm     float64
	PerKmRate       float64
	PerDayRate      float64
	TotalDays       int
	FinalPrice      float64
	PickupLocation  string
	DropoffLocation string
	BookingDate     string
	Status          BookingStatus
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
}

// Assignment carries the driver and derived dealer written by assign/accept.
type Assignment struct {
	DriverID string
	DealerID string
}

// AssignmentFor derives the assignment for a driver. The dealer is never
// chosen independently of the driver.
func AssignmentFor(d *Driver) Assignment {
	return Assignment{DriverID: d.ID, DealerID: d.DealerID}
}
