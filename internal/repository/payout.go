package repository

import (
	"context"
	"time"

	"fleet/internal/domain"
)

// PayoutFilter narrows payout listings. Zero values match everything.
type PayoutFilter struct {
	DriverID string
	DealerID string
	Limit    int
}

// PayoutRepository defines the persistence operations for payouts.
type PayoutRepository interface {
	// CreateIfAbsent inserts the payout unless one already exists for its
	// booking. Reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, payout *domain.Payout) (bool, error)

	// GetByID retrieves a payout by ID.
	GetByID(ctx context.Context, id string) (*domain.Payout, error)

	// GetByBookingID retrieves the payout generated for a booking.
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payout, error)

	// List retrieves payouts matching the filter, newest first.
	List(ctx context.Context, filter PayoutFilter) ([]*domain.Payout, error)

	// MarkProcessed moves a PENDING payout to PROCESSED.
	// Reports false when the payout is absent or not pending.
	MarkProcessed(ctx context.Context, id, adminID string, at time.Time) (bool, error)
}
