package domain

import "time"

// PayoutStatus represents the processing state of a payout.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusProcessed PayoutStatus = "PROCESSED"
	PayoutStatusFailed    PayoutStatus = "FAILED"
)

// Payout is the one-time revenue split of a completed, paid booking.
// At most one payout exists per booking.
type Payout struct {
	ID               string
	BookingID        string
	BookingPrice     float64
	AdminCommission  float64
	DealerAmount     float64
	DealerCommission float64 // informational, already contained in DealerAmount
	DriverAmount     float64
	DealerID         string
	DriverID         string
	AdminID          string
	Status           PayoutStatus
	ProcessedAt      time.Time
	CreatedAt        time.Time
}
