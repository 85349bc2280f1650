package repository

import (
	"context"

	"fleet/internal/domain"
)

// PaymentFilter narrows payment listings. Zero values match everything.
type PaymentFilter struct {
	UserID string
	Limit  int
}

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// List retrieves payments matching the filter, newest first.
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, error)
}
