package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TripService handles trip operations. Trips only ever change status and
// never touch the bookings made under them.
type TripService struct {
	tripRepo repository.TripRepository
	now      func() time.Time
}

// NewTripService creates a new TripService.
func NewTripService(tripRepo repository.TripRepository) *TripService {
	return &TripService{tripRepo: tripRepo, now: time.Now}
}

// CreateTripRequest contains the parameters for creating a trip.
type CreateTripRequest struct {
	City         string
	BaseLocation string
	StartDate    string
	EndDate      string
	Purpose      string
	Notes        string
}

// CreateTrip stores an ACTIVE trip owned by the caller.
func (s *TripService) CreateTrip(ctx context.Context, caller domain.Identity, req CreateTripRequest) (*domain.Trip, error) {
	if req.City == "" || req.BaseLocation == "" {
		return nil, fmt.Errorf("%w: city and base location", ErrMissingField)
	}
	if req.StartDate == "" || req.EndDate == "" {
		return nil, fmt.Errorf("%w: start and end date", ErrMissingField)
	}

	trip := &domain.Trip{
		ID:           uuid.New().String(),
		UserID:       caller.UserID,
		City:         req.City,
		BaseLocation: req.BaseLocation,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
		Status:       domain.TripStatusActive,
		CreatedAt:    s.now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListTrips returns the caller's trips, newest first.
func (s *TripService) ListTrips(ctx context.Context, caller domain.Identity) ([]*domain.Trip, error) {
	return s.tripRepo.ListByUser(ctx, caller.UserID, listLimit)
}

// GetTrip retrieves one of the caller's trips.
func (s *TripService) GetTrip(ctx context.Context, caller domain.Identity, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, notFound(err, ErrTripNotFound)
	}
	if trip.UserID != caller.UserID {
		return nil, ErrTripNotFound
	}
	return trip, nil
}

// UpdateTripStatus sets the status of one of the caller's trips.
func (s *TripService) UpdateTripStatus(ctx context.Context, caller domain.Identity, tripID string, status domain.TripStatus) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	if !status.Valid() {
		return nil, ErrInvalidTripStatus
	}

	if err := s.tripRepo.UpdateStatus(ctx, tripID, caller.UserID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	return s.GetTrip(ctx, caller, tripID)
}
