package tests

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/pricing"
	"fleet/internal/service"
)

// marketplace wires every service to one shared mock store.
type marketplace struct {
	store     *MockStore
	locks     *MockLockStore
	psp       *MockPSP
	publisher *MockPublisher

	bookings *service.BookingService
	payments *service.PaymentService
	payouts  *service.PayoutService
	stats    *service.StatsService
	trips    *service.TripService
	drivers  *service.DriverService
}

func newMarketplace(strict bool) *marketplace {
	m := &marketplace{
		store:     NewMockStore(),
		locks:     NewMockLockStore(),
		psp:       NewMockPSP(),
		publisher: NewMockPublisher(),
	}
	repos := m.store.Repositories()
	ns := service.NewNotificationService(m.publisher)

	m.bookings = service.NewBookingService(repos, m.store, service.BookingOptions{
		Rates:             pricing.DefaultRates(),
		StrictTransitions: strict,
	}, ns)
	m.payments = service.NewPaymentService(repos, m.store, m.psp, ns)
	m.payouts = service.NewPayoutService(repos, m.store, m.locks, ns)
	m.stats = service.NewStatsService(repos)
	m.trips = service.NewTripService(repos.Trips)
	m.drivers = service.NewDriverService(repos.Drivers, repos.Dealers)
	return m
}

var seq int64

func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, atomic.AddInt64(&seq, 1))
}

func (m *marketplace) customer() domain.Identity {
	id := nextID("customer")
	m.store.AddUser(&domain.User{ID: id, Name: "Customer", Email: id + "@example.com", Role: domain.RoleCustomer})
	return domain.Identity{UserID: id, Role: domain.RoleCustomer}
}

func (m *marketplace) admin() domain.Identity {
	id := nextID("admin")
	m.store.AddUser(&domain.User{ID: id, Name: "Admin", Email: id + "@example.com", Role: domain.RoleAdmin})
	return domain.Identity{UserID: id, Role: domain.RoleAdmin}
}

func (m *marketplace) dealer() (domain.Identity, *domain.Dealer) {
	userID := nextID("dealer-user")
	m.store.AddUser(&domain.User{ID: userID, Name: "Dealer", Email: userID + "@example.com", Role: domain.RoleDealer})
	dealer := &domain.Dealer{
		ID:                nextID("dealer"),
		UserID:            userID,
		CompanyName:       "Dealer's Fleet",
		CommissionPercent: domain.DefaultDealerCommissionPercent,
	}
	m.store.AddDealer(dealer)
	return domain.Identity{UserID: userID, Role: domain.RoleDealer}, dealer
}

func (m *marketplace) driver(dealerID string) (domain.Identity, *domain.Driver) {
	userID := nextID("driver-user")
	m.store.AddUser(&domain.User{ID: userID, Name: "Driver", Email: userID + "@example.com", Role: domain.RoleDriver})
	driver := &domain.Driver{
		ID:            nextID("driver"),
		UserID:        userID,
		DealerID:      dealerID,
		LicenseNumber: "DL-0001",
		LicenseExpiry: "2030-01-01",
		VehicleNumber: "KA-01-1234",
		VehicleType:   domain.VehicleTypeSedan,
		IsActive:      true,
	}
	m.store.AddDriver(driver)
	return domain.Identity{UserID: userID, Role: domain.RoleDriver}, driver
}

// pendingBooking creates a trip and a 500.00 booking (50 km, 1 day) for caller.
func (m *marketplace) pendingBooking(t *testing.T, caller domain.Identity) *domain.Booking {
	t.Helper()
	ctx := context.Background()

	trip, err := m.trips.CreateTrip(ctx, caller, service.CreateTripRequest{
		City:         "Bengaluru",
		BaseLocation: "Indiranagar",
		StartDate:    "2026-11-01",
		EndDate:      "2026-11-03",
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	booking, err := m.bookings.CreateBooking(ctx, caller, service.CreateBookingRequest{
		TripID:          trip.ID,
		EstimatedKm:     50,
		TotalDays:       1,
		PickupLocation:  "Airport",
		DropoffLocation: "Hotel",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}

// inProgressBooking returns a booking accepted by driverCaller and started.
func (m *marketplace) inProgressBooking(t *testing.T, customer, driverCaller domain.Identity) *domain.Booking {
	t.Helper()
	ctx := context.Background()

	booking := m.pendingBooking(t, customer)
	if _, err := m.bookings.AcceptBooking(ctx, driverCaller, booking.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	updated, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, domain.BookingStatusInProgress)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return updated
}

func (m *marketplace) pay(t *testing.T, customer domain.Identity, booking *domain.Booking) *domain.Payment {
	t.Helper()
	payment, err := m.payments.RecordPayment(context.Background(), customer, service.RecordPaymentRequest{
		BookingID: booking.ID,
		Amount:    booking.FinalPrice,
		Method:    domain.PaymentMethodUPI,
	})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	return payment
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
