package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fleet/internal/domain"
	"fleet/internal/metrics"
	"fleet/internal/redis"
	"fleet/internal/repository"
)

const payoutLockTTL = 30 * time.Second

// PayoutService lists, settles and documents payouts.
type PayoutService struct {
	repos               repository.Repositories
	tx                  repository.Transactor
	locker              redis.Locker
	notificationService *NotificationService
	now                 func() time.Time
}

// NewPayoutService creates a new PayoutService. locker may be nil, in which
// case processing relies on the conditional update alone.
func NewPayoutService(
	repos repository.Repositories,
	tx repository.Transactor,
	locker redis.Locker,
	notificationService *NotificationService,
) *PayoutService {
	return &PayoutService{
		repos:               repos,
		tx:                  tx,
		locker:              locker,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// ListPayouts returns the payouts visible to the caller, newest first.
// Admins see all, dealers and drivers their own. Customers have none.
func (s *PayoutService) ListPayouts(ctx context.Context, caller domain.Identity) ([]*domain.Payout, error) {
	filter := repository.PayoutFilter{Limit: listLimit}

	switch caller.Role {
	case domain.RoleAdmin:
	case domain.RoleDealer:
		dealer, err := s.repos.Dealers.GetByUserID(ctx, caller.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return []*domain.Payout{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.DealerID = dealer.ID
	case domain.RoleDriver:
		driver, err := s.repos.Drivers.GetByUserID(ctx, caller.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return []*domain.Payout{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.DriverID = driver.ID
	default:
		return nil, ErrForbidden
	}

	return s.repos.Payouts.List(ctx, filter)
}

// ProcessPayout marks a PENDING payout PROCESSED and adds its amounts to the
// driver's and dealer's payout totals, all in one transaction.
func (s *PayoutService) ProcessPayout(ctx context.Context, caller domain.Identity, payoutID string) (*domain.Payout, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	if payoutID == "" {
		return nil, ErrInvalidPayoutID
	}

	if s.locker != nil {
		lockKey := "payout:" + payoutID
		token, ok, err := s.locker.Acquire(ctx, lockKey, payoutLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrPayoutBusy
		}
		defer func() {
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
				slog.WarnContext(ctx, "release payout lock failed",
					slog.String("payout_id", payoutID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	var processed *domain.Payout
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		payout, err := repos.Payouts.GetByID(ctx, payoutID)
		if err != nil {
			return notFound(err, ErrPayoutNotFound)
		}

		at := s.now()
		ok, err := repos.Payouts.MarkProcessed(ctx, payoutID, caller.UserID, at)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPayoutNotPending
		}

		if payout.DriverID != "" {
			if err := repos.Drivers.AddPayouts(ctx, payout.DriverID, payout.DriverAmount); err != nil {
				return err
			}
		}
		if payout.DealerID != "" {
			if err := repos.Dealers.AddPayouts(ctx, payout.DealerID, payout.DealerAmount); err != nil {
				return err
			}
		}

		payout.Status = domain.PayoutStatusProcessed
		payout.ProcessedAt = at
		payout.AdminID = caller.UserID
		processed = payout
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PayoutsProcessed.Inc()
	slog.InfoContext(ctx, "payout processed",
		slog.String("payout_id", processed.ID),
		slog.String("admin_id", caller.UserID),
	)
	s.notificationService.NotifyPayoutProcessed(ctx, processed)

	return processed, nil
}

// PayoutStatement renders a PDF statement for a payout the caller may see.
func (s *PayoutService) PayoutStatement(ctx context.Context, caller domain.Identity, payoutID string) ([]byte, error) {
	if payoutID == "" {
		return nil, ErrInvalidPayoutID
	}

	payout, err := s.repos.Payouts.GetByID(ctx, payoutID)
	if err != nil {
		return nil, notFound(err, ErrPayoutNotFound)
	}
	if err := s.checkVisible(ctx, caller, payout); err != nil {
		return nil, err
	}

	booking, err := s.repos.Bookings.GetByID(ctx, payout.BookingID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return renderStatement(payout, booking, s.now())
}

func (s *PayoutService) checkVisible(ctx context.Context, caller domain.Identity, payout *domain.Payout) error {
	switch caller.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleDealer:
		dealer, err := s.repos.Dealers.GetByUserID(ctx, caller.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if dealer != nil && dealer.ID == payout.DealerID {
			return nil
		}
	case domain.RoleDriver:
		driver, err := s.repos.Drivers.GetByUserID(ctx, caller.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if driver != nil && driver.ID == payout.DriverID {
			return nil
		}
	}
	return ErrForbidden
}
