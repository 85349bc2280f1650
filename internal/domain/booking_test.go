package domain

import "testing"

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusAccepted, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusInProgress, false},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusAccepted, BookingStatusInProgress, true},
		{BookingStatusAccepted, BookingStatusCancelled, true},
		{BookingStatusAccepted, BookingStatusPending, false},
		{BookingStatusInProgress, BookingStatusCompleted, true},
		{BookingStatusInProgress, BookingStatusCancelled, true},
		{BookingStatusCompleted, BookingStatusCompleted, true},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatus("PARKED"), BookingStatusPending, false},
		{BookingStatusPending, BookingStatus("PARKED"), false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, got)
		}
	}
}

func TestBookingStatus_Classification(t *testing.T) {
	if !BookingStatusAccepted.Active() || !BookingStatusInProgress.Active() {
		t.Error("ACCEPTED and IN_PROGRESS must be active")
	}
	if BookingStatusPending.Active() || BookingStatusCompleted.Active() {
		t.Error("PENDING and COMPLETED must not be active")
	}
	if !BookingStatusCompleted.Terminal() || !BookingStatusCancelled.Terminal() {
		t.Error("COMPLETED and CANCELLED must be terminal")
	}
}

func TestAssignmentFor(t *testing.T) {
	a := AssignmentFor(&Driver{ID: "drv-1", DealerID: "dlr-1"})
	if a.DriverID != "drv-1" || a.DealerID != "dlr-1" {
		t.Errorf("Unexpected assignment: %+v", a)
	}
}
