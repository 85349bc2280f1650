package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/mq"
)

// Event types published after successful writes.
const (
	EventBookingCreated       = "booking.created"
	EventBookingAccepted      = "booking.accepted"
	EventBookingAssigned      = "booking.assigned"
	EventBookingStatusChanged = "booking.status_changed"
	EventPaymentRecorded      = "payment.recorded"
	EventPayoutGenerated      = "payout.generated"
	EventPayoutProcessed      = "payout.processed"
)

// BookingEvent is the payload of booking events.
type BookingEvent struct {
	BookingID     string               `json:"booking_id"`
	TripID        string               `json:"trip_id"`
	UserID        string               `json:"user_id"`
	DriverID      string               `json:"driver_id,omitempty"`
	DealerID      string               `json:"dealer_id,omitempty"`
	From          domain.BookingStatus `json:"from,omitempty"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	FinalPrice    float64              `json:"final_price"`
}

// PaymentEvent is the payload of payment.recorded.
type PaymentEvent struct {
	PaymentID string               `json:"payment_id"`
	BookingID string               `json:"booking_id"`
	UserID    string               `json:"user_id"`
	Amount    float64              `json:"amount"`
	Method    domain.PaymentMethod `json:"method"`
	Status    domain.PaymentStatus `json:"status"`
}

// PayoutEvent is the payload of payout events.
type PayoutEvent struct {
	PayoutID        string              `json:"payout_id"`
	BookingID       string              `json:"booking_id"`
	DriverID        string              `json:"driver_id,omitempty"`
	DealerID        string              `json:"dealer_id,omitempty"`
	AdminCommission float64             `json:"admin_commission"`
	DealerAmount    float64             `json:"dealer_amount"`
	DriverAmount    float64             `json:"driver_amount"`
	Status          domain.PayoutStatus `json:"status"`
}

// NotificationService publishes domain events. Delivery failures are logged
// and never surface to the caller. A nil *NotificationService drops events.
type NotificationService struct {
	publisher mq.Publisher
	now       func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(publisher mq.Publisher) *NotificationService {
	return &NotificationService{publisher: publisher, now: time.Now}
}

// NotifyBookingCreated announces a new PENDING booking.
func (s *NotificationService) NotifyBookingCreated(ctx context.Context, b *domain.Booking) {
	s.send(ctx, EventBookingCreated, bookingEvent(b, ""))
}

// NotifyBookingAccepted announces a driver accepting a booking.
func (s *NotificationService) NotifyBookingAccepted(ctx context.Context, b *domain.Booking) {
	s.send(ctx, EventBookingAccepted, bookingEvent(b, domain.BookingStatusPending))
}

// NotifyBookingAssigned announces a dealer or admin assigning a driver.
func (s *NotificationService) NotifyBookingAssigned(ctx context.Context, b *domain.Booking, from domain.BookingStatus) {
	s.send(ctx, EventBookingAssigned, bookingEvent(b, from))
}

// NotifyBookingStatusChanged announces a status update.
func (s *NotificationService) NotifyBookingStatusChanged(ctx context.Context, b *domain.Booking, from domain.BookingStatus) {
	s.send(ctx, EventBookingStatusChanged, bookingEvent(b, from))
}

// NotifyPaymentRecorded announces a payment attempt and its outcome.
func (s *NotificationService) NotifyPaymentRecorded(ctx context.Context, p *domain.Payment) {
	s.send(ctx, EventPaymentRecorded, PaymentEvent{
		PaymentID: p.ID,
		BookingID: p.BookingID,
		UserID:    p.UserID,
		Amount:    p.Amount,
		Method:    p.Method,
		Status:    p.Status,
	})
}

// NotifyPayoutGenerated announces the split of a completed booking.
func (s *NotificationService) NotifyPayoutGenerated(ctx context.Context, p *domain.Payout) {
	s.send(ctx, EventPayoutGenerated, payoutEvent(p))
}

// NotifyPayoutProcessed announces an admin settling a payout.
func (s *NotificationService) NotifyPayoutProcessed(ctx context.Context, p *domain.Payout) {
	s.send(ctx, EventPayoutProcessed, payoutEvent(p))
}

func (s *NotificationService) send(ctx context.Context, eventType string, data any) {
	if s == nil || s.publisher == nil {
		return
	}
	event := mq.Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: s.now(),
		Data:       data,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(eventType).Inc()
		slog.WarnContext(ctx, "publish event failed",
			slog.String("type", eventType),
			slog.String("event_id", event.ID),
			slog.String("error", err.Error()),
		)
	}
}

func bookingEvent(b *domain.Booking, from domain.BookingStatus) BookingEvent {
	return BookingEvent{
		BookingID:     b.ID,
		TripID:        b.TripID,
		UserID:        b.UserID,
		DriverID:      b.DriverID,
		DealerID:      b.DealerID,
		From:          from,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		FinalPrice:    b.FinalPrice,
	}
}

func payoutEvent(p *domain.Payout) PayoutEvent {
	return PayoutEvent{
		PayoutID:        p.ID,
		BookingID:       p.BookingID,
		DriverID:        p.DriverID,
		DealerID:        p.DealerID,
		AdminCommission: p.AdminCommission,
		DealerAmount:    p.DealerAmount,
		DriverAmount:    p.DriverAmount,
		Status:          p.Status,
	}
}
