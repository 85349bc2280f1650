package repository

import (
	"context"

	"fleet/internal/domain"
)

// BookingFilter narrows booking listings. Zero values match everything.
type BookingFilter struct {
	UserID   string
	DriverID string
	DealerID string
	Limit    int
}

// BookingRepository defines the persistence operations for bookings.
type BookingRepository interface {
	// Create persists a new booking.
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by ID.
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// List retrieves bookings matching the filter, newest first.
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)

	// CompareAndSetStatus moves a booking from status `from` to `to` in a
	// single conditional write, also writing the assignment when non-nil.
	// Reports false when the booking is absent or no longer in `from`.
	CompareAndSetStatus(ctx context.Context, id string, from, to domain.BookingStatus, assign *domain.Assignment) (bool, error)

	// SetPaymentStatus overwrites the payment status of a booking.
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error
}
