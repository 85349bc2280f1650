package repository

import (
	"context"

	"fleet/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// ListByUser retrieves a user's trips, newest first. limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Trip, error)

	// UpdateStatus sets the status of a trip owned by userID.
	// Returns ErrNotFound if no such trip belongs to the user.
	UpdateStatus(ctx context.Context, id, userID string, status domain.TripStatus) error
}
