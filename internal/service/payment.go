package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/repository"
)

// ChargeResult is the outcome of a PSP charge.
type ChargeResult struct {
	Approved  bool
	Reference string
}

// PSP is the interface for a Payment Service Provider.
type PSP interface {
	Charge(ctx context.Context, amount float64, method domain.PaymentMethod) (ChargeResult, error)
}

// MockPSP approves every charge. Used until a real provider is configured.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge approves the charge with a generated reference.
func (p *MockPSP) Charge(ctx context.Context, amount float64, method domain.PaymentMethod) (ChargeResult, error) {
	return ChargeResult{Approved: true, Reference: "psp_" + uuid.New().String()}, nil
}

// PaymentService records payments against bookings.
type PaymentService struct {
	repos               repository.Repositories
	tx                  repository.Transactor
	psp                 PSP
	notificationService *NotificationService
	now                 func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	repos repository.Repositories,
	tx repository.Transactor,
	psp PSP,
	notificationService *NotificationService,
) *PaymentService {
	return &PaymentService{
		repos:               repos,
		tx:                  tx,
		psp:                 psp,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// RecordPaymentRequest contains the parameters for recording a payment.
type RecordPaymentRequest struct {
	BookingID     string
	Amount        float64
	Method        domain.PaymentMethod
	TransactionID string // Optional: the PSP reference is used when empty
}

// RecordPayment charges the PSP and stores the attempt. An approved charge
// marks the booking's payment COMPLETED, overwriting earlier attempts.
// A declined or failed charge is stored as FAILED and leaves the booking alone.
func (s *PaymentService) RecordPayment(ctx context.Context, caller domain.Identity, req RecordPaymentRequest) (*domain.Payment, error) {
	if req.BookingID == "" {
		return nil, ErrInvalidBookingID
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	booking, err := s.repos.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, notFound(err, ErrBookingNotFound)
	}
	if booking.UserID != caller.UserID && !caller.Is(domain.RoleAdmin) {
		return nil, ErrForbidden
	}

	payment := &domain.Payment{
		ID:            uuid.New().String(),
		BookingID:     booking.ID,
		UserID:        caller.UserID,
		Amount:        req.Amount,
		Method:        req.Method,
		TransactionID: req.TransactionID,
		Status:        domain.PaymentStatusFailed,
		CreatedAt:     s.now(),
	}

	result, err := s.psp.Charge(ctx, req.Amount, req.Method)
	if err != nil {
		slog.WarnContext(ctx, "psp charge failed",
			slog.String("booking_id", booking.ID),
			slog.String("error", err.Error()),
		)
	} else if result.Approved {
		payment.Status = domain.PaymentStatusCompleted
		if payment.TransactionID == "" {
			payment.TransactionID = result.Reference
		}
	}

	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusCompleted {
			return nil
		}
		return repos.Bookings.SetPaymentStatus(ctx, booking.ID, domain.PaymentStatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(payment.Status)).Inc()
	slog.InfoContext(ctx, "payment recorded",
		slog.String("payment_id", payment.ID),
		slog.String("booking_id", payment.BookingID),
		slog.String("status", string(payment.Status)),
	)
	s.notificationService.NotifyPaymentRecorded(ctx, payment)

	return payment, nil
}

// ListPayments returns the caller's payments; admins see every payment.
func (s *PaymentService) ListPayments(ctx context.Context, caller domain.Identity) ([]*domain.Payment, error) {
	filter := repository.PaymentFilter{UserID: caller.UserID, Limit: listLimit}
	if caller.Is(domain.RoleAdmin) {
		filter.UserID = ""
	}
	return s.repos.Payments.List(ctx, filter)
}
