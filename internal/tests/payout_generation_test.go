package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/service"
)

func TestCompletion_NoPayoutUntilPaid(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	_, dealer := m.dealer()
	driverCaller, driver := m.driver(dealer.ID)
	ctx := context.Background()

	booking := m.inProgressBooking(t, customer, driverCaller)

	if _, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, domain.BookingStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := len(m.store.PayoutsForBooking(booking.ID)); got != 0 {
		t.Fatalf("Expected no payout for an unpaid booking, got %d", got)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; got != 0 {
		t.Errorf("Expected no earnings before payment, got %f", got)
	}

	m.pay(t, customer, booking)

	// Re-submitting COMPLETED after payment generates the payout once.
	for i := 0; i < 3; i++ {
		if _, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, domain.BookingStatusCompleted); err != nil {
			t.Fatalf("complete again (%d): %v", i, err)
		}
	}

	payouts := m.store.PayoutsForBooking(booking.ID)
	if len(payouts) != 1 {
		t.Fatalf("Expected exactly 1 payout, got %d", len(payouts))
	}
	if got := m.publisher.Count(service.EventPayoutGenerated); got != 1 {
		t.Errorf("Expected 1 payout event, got %d", got)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; !approx(got, payouts[0].DriverAmount) {
		t.Errorf("Expected driver earnings %f, got %f", payouts[0].DriverAmount, got)
	}
}

func TestCompletion_SplitWithDealer(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	_, dealer := m.dealer()
	driverCaller, driver := m.driver(dealer.ID)
	ctx := context.Background()

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)

	completed, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, domain.BookingStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.PaymentStatus != domain.PaymentStatusCompleted {
		t.Errorf("Expected returned booking to carry payment COMPLETED, got %s", completed.PaymentStatus)
	}

	payouts := m.store.PayoutsForBooking(booking.ID)
	if len(payouts) != 1 {
		t.Fatalf("Expected 1 payout, got %d", len(payouts))
	}
	p := payouts[0]

	// 500 price: 10% admin = 50, dealer pool 22% of 450 = 99, driver 351.
	checks := []struct {
		name      string
		got, want float64
	}{
		{"booking price", p.BookingPrice, 500},
		{"admin commission", p.AdminCommission, 50},
		{"dealer amount", p.DealerAmount, 99},
		{"dealer commission", p.DealerCommission, 14.85},
		{"driver amount", p.DriverAmount, 351},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}
	if !approx(p.AdminCommission+p.DealerAmount+p.DriverAmount, p.BookingPrice) {
		t.Errorf("Split does not add up to the booking price")
	}
	if p.Status != domain.PayoutStatusPending {
		t.Errorf("Expected PENDING payout, got %s", p.Status)
	}
	if p.DriverID != driver.ID || p.DealerID != dealer.ID {
		t.Errorf("Payout parties mismatch: driver=%s dealer=%s", p.DriverID, p.DealerID)
	}

	if got := m.store.Driver(driver.ID).TotalEarnings; !approx(got, 351) {
		t.Errorf("Expected driver earnings 351, got %f", got)
	}
	if got := m.store.Dealer(dealer.ID).TotalEarnings; !approx(got, 99) {
		t.Errorf("Expected dealer earnings 99, got %f", got)
	}
}

func TestCompletion_IndependentDriverTakesRemainder(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	driverCaller, driver := m.driver("")
	ctx := context.Background()

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)

	if _, err := m.bookings.UpdateBookingStatus(ctx, driverCaller, booking.ID, domain.BookingStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	payouts := m.store.PayoutsForBooking(booking.ID)
	if len(payouts) != 1 {
		t.Fatalf("Expected 1 payout, got %d", len(payouts))
	}
	if !approx(payouts[0].DriverAmount, 450) || payouts[0].DealerAmount != 0 {
		t.Errorf("Expected driver 450 and dealer 0, got driver=%f dealer=%f", payouts[0].DriverAmount, payouts[0].DealerAmount)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; !approx(got, 450) {
		t.Errorf("Expected driver earnings 450, got %f", got)
	}
}

// TestConcurrentCompletion_SinglePayout fires concurrent completions of a paid booking.
func TestConcurrentCompletion_SinglePayout(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	_, dealer := m.dealer()
	driverCaller, driver := m.driver(dealer.ID)

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)

	const numRequests = 25
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := m.bookings.UpdateBookingStatus(context.Background(), driverCaller, booking.ID, domain.BookingStatusCompleted)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && err != service.ErrBookingChanged {
			t.Errorf("Unexpected error: %v", err)
		}
	}

	if got := len(m.store.PayoutsForBooking(booking.ID)); got != 1 {
		t.Fatalf("Expected exactly 1 payout, got %d", got)
	}
	if got := m.store.Booking(booking.ID).Status; got != domain.BookingStatusCompleted {
		t.Errorf("Expected COMPLETED, got %s", got)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; !approx(got, 351) {
		t.Errorf("Earnings accrued more than once: %f", got)
	}
	if got := m.store.Dealer(dealer.ID).TotalEarnings; !approx(got, 99) {
		t.Errorf("Dealer earnings accrued more than once: %f", got)
	}
}

func TestCompletion_PayoutInsertFailureSurfaces(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	driverCaller, driver := m.driver("")

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)
	m.store.Payouts.CreateError = ErrMockTimeout

	_, err := m.bookings.UpdateBookingStatus(context.Background(), driverCaller, booking.ID, domain.BookingStatusCompleted)
	if err != ErrMockTimeout {
		t.Errorf("Expected ErrMockTimeout, got %v", err)
	}
	if got := m.publisher.Count(service.EventPayoutGenerated); got != 0 {
		t.Errorf("Expected no payout event, got %d", got)
	}

	// The status change and the payout share a transaction.
	if got := m.store.Booking(booking.ID).Status; got != domain.BookingStatusInProgress {
		t.Errorf("Expected booking to stay IN_PROGRESS, got %s", got)
	}
	if got := len(m.store.PayoutsForBooking(booking.ID)); got != 0 {
		t.Errorf("Expected no payout, got %d", got)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; got != 0 {
		t.Errorf("Expected no earnings, got %f", got)
	}
	if got := m.store.RollbackCount; got != 1 {
		t.Errorf("Expected 1 rollback, got %d", got)
	}

	m.store.Payouts.CreateError = nil
	if _, err := m.bookings.UpdateBookingStatus(context.Background(), driverCaller, booking.ID, domain.BookingStatusCompleted); err != nil {
		t.Fatalf("retry completion: %v", err)
	}
	if got := len(m.store.PayoutsForBooking(booking.ID)); got != 1 {
		t.Errorf("Expected 1 payout after retry, got %d", got)
	}
	if got := m.store.Driver(driver.ID).TotalEarnings; !approx(got, 450) {
		t.Errorf("Expected 450 earnings after retry, got %f", got)
	}
}

func TestCompletion_EarningsFailureRollsBackPayout(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	customer := m.customer()
	driverCaller, _ := m.driver("")

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)
	m.store.Drivers.AddEarningsError = ErrMockTimeout

	_, err := m.bookings.UpdateBookingStatus(context.Background(), driverCaller, booking.ID, domain.BookingStatusCompleted)
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("Expected ErrMockTimeout, got %v", err)
	}
	if got := len(m.store.PayoutsForBooking(booking.ID)); got != 0 {
		t.Errorf("Expected payout insert to be rolled back, got %d", got)
	}
	if got := m.store.Booking(booking.ID).Status; got != domain.BookingStatusInProgress {
		t.Errorf("Expected booking to stay IN_PROGRESS, got %s", got)
	}
}
