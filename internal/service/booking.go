package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/pricing"
	"fleet/internal/repository"
)

// listLimit caps every listing returned to callers.
const listLimit = 100

// BookingOptions configures the booking lifecycle.
type BookingOptions struct {
	Rates pricing.Rates

	// StrictTransitions rejects status updates not listed in the
	// transition table. When false any known status may follow any other.
	StrictTransitions bool
}

// BookingService drives bookings through their lifecycle and generates
// payouts when a paid booking completes.
type BookingService struct {
	repos               repository.Repositories
	tx                  repository.Transactor
	rates               pricing.Rates
	strict              bool
	notificationService *NotificationService
	now                 func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repos repository.Repositories,
	tx repository.Transactor,
	opts BookingOptions,
	notificationService *NotificationService,
) *BookingService {
	return &BookingService{
		repos:               repos,
		tx:                  tx,
		rates:               opts.Rates,
		strict:              opts.StrictTransitions,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// CreateBookingRequest contains the parameters for creating a booking.
type CreateBookingRequest struct {
	TripID          string
	EstimatedKm     float64
	TotalDays       int
	PickupLocation  string
	DropoffLocation string
	BookingDate     string // Optional: defaults to today
}

// CreateBooking prices and stores a PENDING booking under one of the caller's trips.
func (s *BookingService) CreateBooking(ctx context.Context, caller domain.Identity, req CreateBookingRequest) (*domain.Booking, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.PickupLocation == "" || req.DropoffLocation == "" {
		return nil, fmt.Errorf("%w: pickup and dropoff locations", ErrMissingField)
	}

	price, err := s.rates.Price(req.EstimatedKm, req.TotalDays)
	if err != nil {
		return nil, err
	}

	trip, err := s.repos.Trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, notFound(err, ErrTripNotFound)
	}
	if trip.UserID != caller.UserID {
		return nil, ErrTripNotFound
	}

	now := s.now()
	bookingDate := req.BookingDate
	if bookingDate == "" {
		bookingDate = now.Format(time.DateOnly)
	}

	booking := &domain.Booking{
		ID:              uuid.New().String(),
		TripID:          trip.ID,
		UserID:          caller.UserID,
		BaseFare:        s.rates.BaseFare,
		EstimatedKm:     req.EstimatedKm,
		PerKmRate:       s.rates.PerKmRate,
		PerDayRate:      s.rates.PerDayRate,
		TotalDays:       req.TotalDays,
		FinalPrice:      price,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		BookingDate:     bookingDate,
		Status:          domain.BookingStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		CreatedAt:       now,
	}

	if err := s.repos.Bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingsCreated.Inc()
	slog.InfoContext(ctx, "booking created",
		slog.String("booking_id", booking.ID),
		slog.String("trip_id", booking.TripID),
		slog.Float64("final_price", booking.FinalPrice),
	)
	s.notificationService.NotifyBookingCreated(ctx, booking)

	return booking, nil
}

// ListBookings returns the bookings visible to the caller, newest first.
// Drivers and dealers without a profile fall back to the bookings they made.
func (s *BookingService) ListBookings(ctx context.Context, caller domain.Identity) ([]*domain.Booking, error) {
	filter := repository.BookingFilter{UserID: caller.UserID, Limit: listLimit}

	switch caller.Role {
	case domain.RoleDriver:
		driver, err := s.repos.Drivers.GetByUserID(ctx, caller.UserID)
		if err == nil {
			filter = repository.BookingFilter{DriverID: driver.ID, Limit: listLimit}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	case domain.RoleDealer:
		dealer, err := s.repos.Dealers.GetByUserID(ctx, caller.UserID)
		if err == nil {
			filter = repository.BookingFilter{DealerID: dealer.ID, Limit: listLimit}
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	case domain.RoleAdmin:
		filter = repository.BookingFilter{Limit: listLimit}
	}

	return s.repos.Bookings.List(ctx, filter)
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	return booking, nil
}

// AssignDriver puts a driver on a booking and moves it to ACCEPTED.
// Dealers may only assign their own drivers. The booking's dealer is
// always taken from the driver.
func (s *BookingService) AssignDriver(ctx context.Context, caller domain.Identity, bookingID, driverID string) (*domain.Booking, error) {
	if !caller.Is(domain.RoleDealer, domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}

	driver, err := s.repos.Drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, notFound(err, ErrDriverNotFound)
	}

	if caller.Role == domain.RoleDealer {
		dealer, err := s.repos.Dealers.GetByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, notFound(err, ErrDealerProfileNotFound)
		}
		if driver.DealerID != dealer.ID {
			return nil, ErrForbidden
		}
	}

	assign := domain.AssignmentFor(driver)
	from := booking.Status

	updated, err := s.transition(ctx, s.repos, booking, domain.BookingStatusAccepted, &assign, "assign")
	if err != nil {
		return nil, err
	}
	recordTransition(from, updated.Status)

	slog.InfoContext(ctx, "driver assigned",
		slog.String("booking_id", updated.ID),
		slog.String("driver_id", updated.DriverID),
		slog.String("dealer_id", updated.DealerID),
	)
	s.notificationService.NotifyBookingAssigned(ctx, updated, from)

	return updated, nil
}

// AcceptBooking lets the caller's driver profile claim a PENDING booking.
// Of any number of concurrent accepts exactly one succeeds.
func (s *BookingService) AcceptBooking(ctx context.Context, caller domain.Identity, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}

	driver, err := s.repos.Drivers.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrDriverProfileNotFound)
	}

	assign := domain.AssignmentFor(driver)
	ok, err := s.repos.Bookings.CompareAndSetStatus(ctx, bookingID,
		domain.BookingStatusPending, domain.BookingStatusAccepted, &assign)
	if err != nil {
		return nil, err
	}
	if !ok {
		if _, err := s.repos.Bookings.GetByID(ctx, bookingID); err != nil {
			return nil, notFound(err, ErrBookingNotFound)
		}
		metrics.BookingConflicts.WithLabelValues("accept").Inc()
		return nil, ErrBookingNotPending
	}
	recordTransition(domain.BookingStatusPending, domain.BookingStatusAccepted)

	booking, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "booking accepted",
		slog.String("booking_id", booking.ID),
		slog.String("driver_id", driver.ID),
	)
	s.notificationService.NotifyBookingAccepted(ctx, booking)

	return booking, nil
}

// UpdateBookingStatus moves a booking to status. Completing a paid booking
// generates its payout in the same transaction; repeating the update never
// generates a second one.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, caller domain.Identity, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if !status.Valid() {
		return nil, ErrInvalidBookingStatus
	}

	current, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}

	var (
		updated *domain.Booking
		payout  *domain.Payout
	)
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		b, err := s.transition(ctx, repos, current, status, nil, "status")
		if err != nil {
			return err
		}
		updated = b
		if status != domain.BookingStatusCompleted {
			return nil
		}

		// Payment may have landed since the first read.
		fresh, err := repos.Bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		updated = fresh
		payout, err = s.generatePayout(ctx, repos, fresh)
		return err
	})
	if err != nil {
		return nil, err
	}
	recordTransition(current.Status, updated.Status)

	slog.InfoContext(ctx, "booking status updated",
		slog.String("booking_id", updated.ID),
		slog.String("from", string(current.Status)),
		slog.String("to", string(updated.Status)),
		slog.String("by", caller.UserID),
	)
	s.notificationService.NotifyBookingStatusChanged(ctx, updated, current.Status)

	if payout != nil {
		metrics.PayoutsGenerated.Inc()
		slog.InfoContext(ctx, "payout generated",
			slog.String("payout_id", payout.ID),
			slog.String("booking_id", payout.BookingID),
			slog.Float64("driver_amount", payout.DriverAmount),
			slog.Float64("dealer_amount", payout.DealerAmount),
		)
		s.notificationService.NotifyPayoutGenerated(ctx, payout)
	}

	return updated, nil
}

// transition performs a guarded compare-and-set from b.Status to `to`.
func (s *BookingService) transition(
	ctx context.Context,
	repos repository.Repositories,
	b *domain.Booking,
	to domain.BookingStatus,
	assign *domain.Assignment,
	op string,
) (*domain.Booking, error) {
	if s.strict && !b.Status.CanTransitionTo(to) {
		metrics.BookingConflicts.WithLabelValues(op).Inc()
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, b.Status, to)
	}

	ok, err := repos.Bookings.CompareAndSetStatus(ctx, b.ID, b.Status, to, assign)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.BookingConflicts.WithLabelValues(op).Inc()
		return nil, ErrBookingChanged
	}

	updated := *b
	updated.Status = to
	if assign != nil {
		updated.DriverID = assign.DriverID
		updated.DealerID = assign.DealerID
	}
	return &updated, nil
}

// generatePayout inserts the payout for a completed booking unless the
// booking is unpaid or already has one, and accrues the split to the
// driver and dealer only when this call created the payout.
func (s *BookingService) generatePayout(ctx context.Context, repos repository.Repositories, b *domain.Booking) (*domain.Payout, error) {
	if b.PaymentStatus != domain.PaymentStatusCompleted {
		return nil, nil
	}

	split, err := s.rates.Split(b.FinalPrice, b.DealerID != "")
	if err != nil {
		return nil, err
	}

	payout := &domain.Payout{
		ID:               uuid.New().String(),
		BookingID:        b.ID,
		BookingPrice:     split.BookingPrice,
		AdminCommission:  split.AdminCommission,
		DealerAmount:     split.DealerAmount,
		DealerCommission: split.DealerCommission,
		DriverAmount:     split.DriverAmount,
		DealerID:         b.DealerID,
		DriverID:         b.DriverID,
		Status:           domain.PayoutStatusPending,
		CreatedAt:        s.now(),
	}

	created, err := repos.Payouts.CreateIfAbsent(ctx, payout)
	if err != nil {
		return nil, err
	}
	if !created {
		metrics.PayoutDuplicatesSkipped.Inc()
		return nil, nil
	}

	if payout.DriverID != "" {
		if err := repos.Drivers.AddEarnings(ctx, payout.DriverID, payout.DriverAmount); err != nil {
			return nil, fmt.Errorf("accrue driver earnings: %w", err)
		}
	}
	if payout.DealerID != "" {
		if err := repos.Dealers.AddEarnings(ctx, payout.DealerID, payout.DealerAmount); err != nil {
			return nil, fmt.Errorf("accrue dealer earnings: %w", err)
		}
	}

	return payout, nil
}

func recordTransition(from, to domain.BookingStatus) {
	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
}
