package tests

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// completedPayout drives a dealer-fleet booking to a generated payout.
func completedPayout(t *testing.T, m *marketplace) (*domain.Payout, domain.Identity, domain.Identity) {
	t.Helper()

	customer := m.customer()
	dealerCaller, dealer := m.dealer()
	driverCaller, _ := m.driver(dealer.ID)

	booking := m.inProgressBooking(t, customer, driverCaller)
	m.pay(t, customer, booking)
	if _, err := m.bookings.UpdateBookingStatus(context.Background(), driverCaller, booking.ID, domain.BookingStatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	payouts := m.store.PayoutsForBooking(booking.ID)
	if len(payouts) != 1 {
		t.Fatalf("Expected 1 payout, got %d", len(payouts))
	}
	return payouts[0], dealerCaller, driverCaller
}

func TestProcessPayout_UpdatesTotalsOnce(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, _, _ := completedPayout(t, m)
	admin := m.admin()
	ctx := context.Background()

	processed, err := m.payouts.ProcessPayout(ctx, admin, payout.ID)
	if err != nil {
		t.Fatalf("Expected process to succeed, got %v", err)
	}
	if processed.Status != domain.PayoutStatusProcessed {
		t.Errorf("Expected PROCESSED, got %s", processed.Status)
	}
	if processed.AdminID != admin.UserID {
		t.Errorf("Expected admin %s, got %s", admin.UserID, processed.AdminID)
	}
	if processed.ProcessedAt.IsZero() {
		t.Error("Expected processed_at to be set")
	}

	_, err = m.payouts.ProcessPayout(ctx, admin, payout.ID)
	if err != service.ErrPayoutNotPending {
		t.Errorf("Expected ErrPayoutNotPending on second process, got %v", err)
	}

	driver := m.store.Driver(payout.DriverID)
	if !approx(driver.TotalPayouts, payout.DriverAmount) {
		t.Errorf("Expected driver payouts %f, got %f", payout.DriverAmount, driver.TotalPayouts)
	}
	dealer := m.store.Dealer(payout.DealerID)
	if !approx(dealer.TotalPayouts, payout.DealerAmount) {
		t.Errorf("Expected dealer payouts %f, got %f", payout.DealerAmount, dealer.TotalPayouts)
	}
	if got := m.publisher.Count(service.EventPayoutProcessed); got != 1 {
		t.Errorf("Expected 1 processed event, got %d", got)
	}
	if m.locks.IsLocked("payout:" + payout.ID) {
		t.Error("Expected payout lock to be released")
	}
}

func TestProcessPayout_Concurrent(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, _, _ := completedPayout(t, m)
	admin := m.admin()

	const numRequests = 20
	var (
		wg        sync.WaitGroup
		successes int32
		rejected  int32
	)
	start := make(chan struct{})

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := m.payouts.ProcessPayout(context.Background(), admin, payout.ID)
			switch err {
			case nil:
				atomic.AddInt32(&successes, 1)
			case service.ErrPayoutNotPending, service.ErrPayoutBusy:
				atomic.AddInt32(&rejected, 1)
			default:
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 {
		t.Errorf("Expected exactly 1 successful process, got %d", successes)
	}
	if rejected != numRequests-1 {
		t.Errorf("Expected %d rejections, got %d", numRequests-1, rejected)
	}
	if got := m.store.Driver(payout.DriverID).TotalPayouts; !approx(got, payout.DriverAmount) {
		t.Errorf("Driver payouts applied more than once: %f", got)
	}
}

func TestProcessPayout_LockHeld(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, _, _ := completedPayout(t, m)
	m.locks.ForceAcquireFailure = true

	_, err := m.payouts.ProcessPayout(context.Background(), m.admin(), payout.ID)
	if err != service.ErrPayoutBusy {
		t.Errorf("Expected ErrPayoutBusy, got %v", err)
	}
	if got := m.store.PayoutsForBooking(payout.BookingID)[0].Status; got != domain.PayoutStatusPending {
		t.Errorf("Expected payout to stay PENDING, got %s", got)
	}
}

func TestProcessPayout_WithoutLocker(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, _, _ := completedPayout(t, m)
	payouts := service.NewPayoutService(m.store.Repositories(), m.store, nil, nil)

	if _, err := payouts.ProcessPayout(context.Background(), m.admin(), payout.ID); err != nil {
		t.Errorf("Expected process without a locker to succeed, got %v", err)
	}
}

func TestProcessPayout_Errors(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, dealerCaller, _ := completedPayout(t, m)
	ctx := context.Background()

	tests := []struct {
		name     string
		caller   domain.Identity
		payoutID string
		want     error
	}{
		{"dealer cannot process", dealerCaller, payout.ID, service.ErrForbidden},
		{"empty id", m.admin(), "", service.ErrInvalidPayoutID},
		{"unknown payout", m.admin(), "missing", service.ErrPayoutNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.payouts.ProcessPayout(ctx, tt.caller, tt.payoutID)
			if err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestListPayouts_Visibility(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	completedPayout(t, m)
	_, dealerCaller, driverCaller := completedPayout(t, m)
	otherDealer, _ := m.dealer()
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  domain.Identity
		want    int
		wantErr error
	}{
		{"admin sees all", m.admin(), 2, nil},
		{"dealer sees own", dealerCaller, 1, nil},
		{"driver sees own", driverCaller, 1, nil},
		{"dealer with no payouts", otherDealer, 0, nil},
		{"driver without profile", domain.Identity{UserID: "nobody", Role: domain.RoleDriver}, 0, nil},
		{"customer is forbidden", m.customer(), 0, service.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.payouts.ListPayouts(ctx, tt.caller)
			if err != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if len(got) != tt.want {
				t.Errorf("Expected %d payouts, got %d", tt.want, len(got))
			}
		})
	}
}

func TestPayoutStatement(t *testing.T) {
	t.Parallel()

	m := newMarketplace(true)
	payout, dealerCaller, driverCaller := completedPayout(t, m)
	strangerDealer, _ := m.dealer()
	ctx := context.Background()

	for _, caller := range []domain.Identity{m.admin(), dealerCaller, driverCaller} {
		pdf, err := m.payouts.PayoutStatement(ctx, caller, payout.ID)
		if err != nil {
			t.Fatalf("Expected statement for %s, got %v", caller.Role, err)
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF")) {
			t.Errorf("Expected a PDF document for %s", caller.Role)
		}
	}

	if _, err := m.payouts.PayoutStatement(ctx, strangerDealer, payout.ID); err != service.ErrForbidden {
		t.Errorf("Expected ErrForbidden for another dealer, got %v", err)
	}
	if _, err := m.payouts.PayoutStatement(ctx, m.customer(), payout.ID); err != service.ErrForbidden {
		t.Errorf("Expected ErrForbidden for a customer, got %v", err)
	}
	if _, err := m.payouts.PayoutStatement(ctx, m.admin(), "missing"); err != service.ErrPayoutNotFound {
		t.Errorf("Expected ErrPayoutNotFound, got %v", err)
	}
}
