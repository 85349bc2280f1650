package repository

import (
	"context"

	"fleet/internal/domain"
)

// DriverFilter narrows driver listings. Zero values match everything.
type DriverFilter struct {
	DealerID    string
	VehicleType domain.VehicleType
	ActiveOnly  bool
	Limit       int
}

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create adds a new driver profile.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// GetByUserID retrieves the driver profile of a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)

	// List retrieves drivers matching the filter.
	List(ctx context.Context, filter DriverFilter) ([]*domain.Driver, error)

	// AddEarnings increments total_earnings by delta.
	AddEarnings(ctx context.Context, id string, delta float64) error

	// AddPayouts increments total_payouts by delta.
	AddPayouts(ctx context.Context, id string, delta float64) error
}

// DealerRepository defines the persistence operations for dealers.
type DealerRepository interface {
	// Create adds a new dealer profile.
	Create(ctx context.Context, dealer *domain.Dealer) error

	// GetByID retrieves a dealer by ID.
	GetByID(ctx context.Context, id string) (*domain.Dealer, error)

	// GetByUserID retrieves the dealer profile of a user.
	GetByUserID(ctx context.Context, userID string) (*domain.Dealer, error)

	// AddEarnings increments total_earnings by delta.
	AddEarnings(ctx context.Context, id string, delta float64) error

	// AddPayouts increments total_payouts by delta.
	AddPayouts(ctx context.Context, id string, delta float64) error
}
