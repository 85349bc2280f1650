package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet/internal/domain"
	"fleet/internal/pricing"
	"fleet/internal/service"
)

func TestCreateBooking_PricesAndDefaults(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	booking := m.pendingBooking(t, customer)

	// 50 + 50 km * 5 + 1 day * 200
	if !approx(booking.FinalPrice, 500) {
		t.Errorf("Expected final price 500, got %f", booking.FinalPrice)
	}
	if booking.Status != domain.BookingStatusPending {
		t.Errorf("Expected PENDING, got %s", booking.Status)
	}
	if booking.PaymentStatus != domain.PaymentStatusPending {
		t.Errorf("Expected payment PENDING, got %s", booking.PaymentStatus)
	}
	if booking.DriverID != "" || booking.DealerID != "" {
		t.Errorf("New booking must be unassigned, got driver=%q dealer=%q", booking.DriverID, booking.DealerID)
	}
	if booking.BookingDate != time.Now().Format(time.DateOnly) {
		t.Errorf("Expected booking date to default to today, got %s", booking.BookingDate)
	}
	if got := m.publisher.Count(service.EventBookingCreated); got != 1 {
		t.Errorf("Expected 1 created event, got %d", got)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	owner := m.customer()
	stranger := m.customer()
	ctx := context.Background()

	trip, err := m.trips.CreateTrip(ctx, owner, service.CreateTripRequest{
		City: "Pune", BaseLocation: "Station", StartDate: "2026-11-01", EndDate: "2026-11-02",
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	valid := service.CreateBookingRequest{
		TripID: trip.ID, EstimatedKm: 10, TotalDays: 1, PickupLocation: "A", DropoffLocation: "B",
	}

	tests := []struct {
		name   string
		caller domain.Identity
		mutate func(r *service.CreateBookingRequest)
		want   error
	}{
		{"missing trip id", owner, func(r *service.CreateBookingRequest) { r.TripID = "" }, service.ErrInvalidTripID},
		{"missing pickup", owner, func(r *service.CreateBookingRequest) { r.PickupLocation = "" }, service.ErrMissingField},
		{"negative distance", owner, func(r *service.CreateBookingRequest) { r.EstimatedKm = -1 }, pricing.ErrNegativeDistance},
		{"zero days", owner, func(r *service.CreateBookingRequest) { r.TotalDays = 0 }, pricing.ErrInvalidDays},
		{"unknown trip", owner, func(r *service.CreateBookingRequest) { r.TripID = "missing" }, service.ErrTripNotFound},
		{"someone else's trip", stranger, func(r *service.CreateBookingRequest) {}, service.ErrTripNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := m.bookings.CreateBooking(ctx, tt.caller, req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if got := m.store.Bookings.CreateCallCount; got != 0 {
		t.Errorf("Expected no bookings stored, got %d", got)
	}
}

func TestCreateBooking_StoreFailure(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	owner := m.customer()
	ctx := context.Background()

	trip, err := m.trips.CreateTrip(ctx, owner, service.CreateTripRequest{
		City: "Pune", BaseLocation: "Station", StartDate: "2026-11-01", EndDate: "2026-11-02",
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	m.store.Bookings.CreateError = ErrMockDBConstraint

	_, err = m.bookings.CreateBooking(ctx, owner, service.CreateBookingRequest{
		TripID: trip.ID, EstimatedKm: 10, TotalDays: 1, PickupLocation: "A", DropoffLocation: "B",
	})
	if !errors.Is(err, ErrMockDBConstraint) {
		t.Errorf("Expected ErrMockDBConstraint, got %v", err)
	}
	if got := m.publisher.Count(service.EventBookingCreated); got != 0 {
		t.Errorf("Expected no booking.created event, got %d", got)
	}
}

func TestAssignDriver_DealerIsDerivedFromDriver(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	dealerCaller, dealer := m.dealer()
	_, driver := m.driver(dealer.ID)
	booking := m.pendingBooking(t, customer)

	assigned, err := m.bookings.AssignDriver(context.Background(), dealerCaller, booking.ID, driver.ID)
	if err != nil {
		t.Fatalf("Expected assign to succeed, got %v", err)
	}
	if assigned.Status != domain.BookingStatusAccepted {
		t.Errorf("Expected ACCEPTED, got %s", assigned.Status)
	}
	if assigned.DriverID != driver.ID {
		t.Errorf("Expected driver %s, got %s", driver.ID, assigned.DriverID)
	}
	if assigned.DealerID != dealer.ID {
		t.Errorf("Expected dealer %s, got %s", dealer.ID, assigned.DealerID)
	}
	if got := m.publisher.Count(service.EventBookingAssigned); got != 1 {
		t.Errorf("Expected 1 assigned event, got %d", got)
	}
}

func TestAssignDriver_AdminAssignsIndependentDriver(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	_, driver := m.driver("")
	booking := m.pendingBooking(t, customer)

	assigned, err := m.bookings.AssignDriver(context.Background(), m.admin(), booking.ID, driver.ID)
	if err != nil {
		t.Fatalf("Expected assign to succeed, got %v", err)
	}
	if assigned.DealerID != "" {
		t.Errorf("Independent driver must leave dealer empty, got %s", assigned.DealerID)
	}
}

func TestAssignDriver_Authorization(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	dealerCaller, _ := m.dealer()
	_, otherDealer := m.dealer()
	driverCaller, foreignDriver := m.driver(otherDealer.ID)
	booking := m.pendingBooking(t, customer)
	ctx := context.Background()

	tests := []struct {
		name     string
		caller   domain.Identity
		driverID string
		want     error
	}{
		{"dealer assigns another dealer's driver", dealerCaller, foreignDriver.ID, service.ErrForbidden},
		{"customer cannot assign", customer, foreignDriver.ID, service.ErrForbidden},
		{"driver cannot assign", driverCaller, foreignDriver.ID, service.ErrForbidden},
		{"unknown driver", dealerCaller, "missing", service.ErrDriverNotFound},
		{"empty driver id", dealerCaller, "", service.ErrInvalidDriverID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.bookings.AssignDriver(ctx, tt.caller, booking.ID, tt.driverID)
			if err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	stored := m.store.Booking(booking.ID)
	if stored.Status != domain.BookingStatusPending || stored.DriverID != "" {
		t.Errorf("Rejected assigns must not touch the booking, got %s driver=%q", stored.Status, stored.DriverID)
	}
}

func TestUpdateBookingStatus_StrictTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   []domain.BookingStatus
		to      domain.BookingStatus
		wantErr error
	}{
		{"pending to completed", nil, domain.BookingStatusCompleted, service.ErrIllegalTransition},
		{"pending to in progress", nil, domain.BookingStatusInProgress, service.ErrIllegalTransition},
		{"pending to cancelled", nil, domain.BookingStatusCancelled, nil},
		{"in progress to completed", []domain.BookingStatus{domain.BookingStatusInProgress}, domain.BookingStatusCompleted, nil},
		{"completed to cancelled", []domain.BookingStatus{domain.BookingStatusInProgress, domain.BookingStatusCompleted}, domain.BookingStatusCancelled, service.ErrIllegalTransition},
		{"cancelled to pending", []domain.BookingStatus{domain.BookingStatusCancelled}, domain.BookingStatusPending, service.ErrIllegalTransition},
		{"same state is allowed", []domain.BookingStatus{domain.BookingStatusInProgress}, domain.BookingStatusInProgress, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMarketplace(true)
			customer := m.customer()
			driverCaller, _ := m.driver("")
			booking := m.pendingBooking(t, customer)
			ctx := context.Background()

			if len(tt.setup) > 0 && tt.setup[0] != domain.BookingStatusCancelled {
				if _, err := m.bookings.AcceptBooking(ctx, driverCaller, booking.ID); err != nil {
					t.Fatalf("accept: %v", err)
				}
			}
			for _, s := range tt.setup {
				if _, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, s); err != nil {
					t.Fatalf("setup %s: %v", s, err)
				}
			}
			before := m.store.Booking(booking.ID).Status

			updated, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, tt.to)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				if got := m.store.Booking(booking.ID).Status; got != before {
					t.Errorf("Rejected transition changed status from %s to %s", before, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected success, got %v", err)
			}
			if updated.Status != tt.to {
				t.Errorf("Expected %s, got %s", tt.to, updated.Status)
			}
		})
	}
}

func TestUpdateBookingStatus_PermissiveAllowsAnyKnownStatus(t *testing.T) {
	t.Parallel()

	m := newMarketplace(false)
	customer := m.customer()
	booking := m.pendingBooking(t, customer)
	ctx := context.Background()

	updated, err := m.bookings.UpdateBookingStatus(ctx, customer, booking.ID, domain.BookingStatusCompleted)
	if err != nil {
		t.Fatalf("Expected permissive mode to allow PENDING -> COMPLETED, got %v", err)
	}
	if updated.Status != domain.BookingStatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", updated.Status)
	}

	updated, err = m.bookings.UpdateBookingStatus(ctx, customer, booking.ID, domain.BookingStatusPending)
	if err != nil {
		t.Fatalf("Expected permissive mode to allow COMPLETED -> PENDING, got %v", err)
	}
	if updated.Status != domain.BookingStatusPending {
		t.Errorf("Expected PENDING, got %s", updated.Status)
	}
}

func TestUpdateBookingStatus_InvalidInput(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	booking := m.pendingBooking(t, customer)
	ctx := context.Background()

	if _, err := m.bookings.UpdateBookingStatus(ctx, customer, booking.ID, "PARKED"); err != service.ErrInvalidBookingStatus {
		t.Errorf("Expected ErrInvalidBookingStatus, got %v", err)
	}
	if _, err := m.bookings.UpdateBookingStatus(ctx, customer, "missing", domain.BookingStatusCancelled); err != service.ErrBookingNotFound {
		t.Errorf("Expected ErrBookingNotFound, got %v", err)
	}
	if _, err := m.bookings.UpdateBookingStatus(ctx, customer, "", domain.BookingStatusCancelled); err != service.ErrInvalidBookingID {
		t.Errorf("Expected ErrInvalidBookingID, got %v", err)
	}
}

func TestListBookings_ScopedByRole(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	alice := m.customer()
	bob := m.customer()
	dealerCaller, dealer := m.dealer()
	driverCaller, driver := m.driver(dealer.ID)
	ctx := context.Background()

	aliceBooking := m.pendingBooking(t, alice)
	m.pendingBooking(t, bob)
	if _, err := m.bookings.AssignDriver(ctx, dealerCaller, aliceBooking.ID, driver.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	tests := []struct {
		name   string
		caller domain.Identity
		want   int
	}{
		{"customer sees own", alice, 1},
		{"other customer sees own", bob, 1},
		{"driver sees assigned", driverCaller, 1},
		{"dealer sees fleet", dealerCaller, 1},
		{"admin sees all", m.admin(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.bookings.ListBookings(ctx, tt.caller)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d bookings, got %d", tt.want, len(got))
			}
		})
	}
}

func TestListBookings_DriverWithoutProfileFallsBackToOwnBookings(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	caller := domain.Identity{UserID: nextID("driver-user"), Role: domain.RoleDriver}
	m.pendingBooking(t, caller)

	got, err := m.bookings.ListBookings(context.Background(), caller)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].UserID != caller.UserID {
		t.Errorf("Expected the caller's own booking, got %d bookings", len(got))
	}
}
