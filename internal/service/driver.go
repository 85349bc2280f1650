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

// DriverService handles driver and dealer profiles.
type DriverService struct {
	driverRepo repository.DriverRepository
	dealerRepo repository.DealerRepository
	now        func() time.Time
}

// NewDriverService creates a new DriverService.
func NewDriverService(driverRepo repository.DriverRepository, dealerRepo repository.DealerRepository) *DriverService {
	return &DriverService{
		driverRepo: driverRepo,
		dealerRepo: dealerRepo,
		now:        time.Now,
	}
}

// CreateDriverProfileRequest contains the parameters for a driver profile.
type CreateDriverProfileRequest struct {
	DealerID      string // Optional: empty for independent drivers
	LicenseNumber string
	LicenseExpiry string
	VehicleNumber string
	VehicleType   domain.VehicleType
}

// CreateDriverProfile creates the caller's driver profile.
func (s *DriverService) CreateDriverProfile(ctx context.Context, caller domain.Identity, req CreateDriverProfileRequest) (*domain.Driver, error) {
	if req.LicenseNumber == "" || req.LicenseExpiry == "" || req.VehicleNumber == "" {
		return nil, fmt.Errorf("%w: license and vehicle details", ErrMissingField)
	}
	if !req.VehicleType.Valid() {
		return nil, ErrInvalidVehicleType
	}

	if _, err := s.driverRepo.GetByUserID(ctx, caller.UserID); err == nil {
		return nil, ErrDriverProfileExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if req.DealerID != "" {
		if _, err := s.dealerRepo.GetByID(ctx, req.DealerID); err != nil {
			return nil, notFound(err, ErrDealerNotFound)
		}
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		UserID:        caller.UserID,
		DealerID:      req.DealerID,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: req.LicenseExpiry,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   req.VehicleType,
		IsActive:      true,
		CreatedAt:     s.now(),
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// ListAvailableDrivers returns active drivers, optionally of one vehicle type.
func (s *DriverService) ListAvailableDrivers(ctx context.Context, vehicleType domain.VehicleType) ([]*domain.Driver, error) {
	if vehicleType != "" && !vehicleType.Valid() {
		return nil, ErrInvalidVehicleType
	}

	return s.driverRepo.List(ctx, repository.DriverFilter{
		VehicleType: vehicleType,
		ActiveOnly:  true,
		Limit:       listLimit,
	})
}

// GetDriverProfile returns the caller's driver profile.
func (s *DriverService) GetDriverProfile(ctx context.Context, caller domain.Identity) (*domain.Driver, error) {
	driver, err := s.driverRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrDriverProfileNotFound)
	}
	return driver, nil
}

// GetDealerProfile returns the caller's dealer profile.
func (s *DriverService) GetDealerProfile(ctx context.Context, caller domain.Identity) (*domain.Dealer, error) {
	dealer, err := s.dealerRepo.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrDealerProfileNotFound)
	}
	return dealer, nil
}

// ListDealerDrivers returns the drivers of the caller's dealer.
func (s *DriverService) ListDealerDrivers(ctx context.Context, caller domain.Identity) ([]*domain.Driver, error) {
	dealer, err := s.GetDealerProfile(ctx, caller)
	if err != nil {
		return nil, err
	}

	return s.driverRepo.List(ctx, repository.DriverFilter{DealerID: dealer.ID, Limit: listLimit})
}
