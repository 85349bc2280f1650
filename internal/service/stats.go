package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// StatsService computes dashboard summaries. Nothing is cached; every call
// reloads the records in scope.
type StatsService struct {
	repos repository.Repositories
}

// NewStatsService creates a new StatsService.
func NewStatsService(repos repository.Repositories) *StatsService {
	return &StatsService{repos: repos}
}

// DriverStats summarises the caller's driver profile.
func (s *StatsService) DriverStats(ctx context.Context, caller domain.Identity) (*domain.DashboardStats, error) {
	driver, err := s.repos.Drivers.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrDriverProfileNotFound)
	}

	bookings, err := s.repos.Bookings.List(ctx, repository.BookingFilter{DriverID: driver.ID})
	if err != nil {
		return nil, err
	}

	stats := EarnerDashboard(bookings, driver.TotalEarnings, driver.TotalPayouts)
	return &stats, nil
}

// DealerStats summarises the caller's dealer profile.
func (s *StatsService) DealerStats(ctx context.Context, caller domain.Identity) (*domain.DashboardStats, error) {
	if !caller.Is(domain.RoleDealer) {
		return nil, ErrForbidden
	}

	dealer, err := s.repos.Dealers.GetByUserID(ctx, caller.UserID)
	if err != nil {
		return nil, notFound(err, ErrDealerProfileNotFound)
	}

	bookings, err := s.repos.Bookings.List(ctx, repository.BookingFilter{DealerID: dealer.ID})
	if err != nil {
		return nil, err
	}

	stats := EarnerDashboard(bookings, dealer.TotalEarnings, dealer.TotalPayouts)
	return &stats, nil
}

// CustomerStats summarises the caller's bookings, trips and spending.
func (s *StatsService) CustomerStats(ctx context.Context, caller domain.Identity) (*domain.DashboardStats, error) {
	var (
		bookings []*domain.Booking
		trips    []*domain.Trip
		payments []*domain.Payment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bookings, err = s.repos.Bookings.List(gctx, repository.BookingFilter{UserID: caller.UserID})
		return err
	})
	g.Go(func() (err error) {
		trips, err = s.repos.Trips.ListByUser(gctx, caller.UserID, 0)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.repos.Payments.List(gctx, repository.PaymentFilter{UserID: caller.UserID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := CustomerDashboard(bookings, trips, payments)
	return &stats, nil
}

// AdminStats summarises the whole platform.
func (s *StatsService) AdminStats(ctx context.Context, caller domain.Identity) (*domain.AdminStats, error) {
	if !caller.Is(domain.RoleAdmin) {
		return nil, ErrForbidden
	}

	var (
		users    int
		bookings []*domain.Booking
		payouts  []*domain.Payout
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.repos.Users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = s.repos.Bookings.List(gctx, repository.BookingFilter{})
		return err
	})
	g.Go(func() (err error) {
		payouts, err = s.repos.Payouts.List(gctx, repository.PayoutFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := AdminDashboard(users, bookings, payouts)
	return &stats, nil
}

// EarnerDashboard aggregates a driver's or dealer's bookings and running totals.
func EarnerDashboard(bookings []*domain.Booking, totalEarnings, totalPayouts float64) domain.DashboardStats {
	return domain.DashboardStats{
		TotalBookings:  len(bookings),
		ActiveTrips:    countActive(bookings),
		TotalEarnings:  totalEarnings,
		PendingPayouts: totalEarnings - totalPayouts,
	}
}

// CustomerDashboard aggregates a customer's records. Customers earn nothing;
// TotalSpent sums their completed payments.
func CustomerDashboard(bookings []*domain.Booking, trips []*domain.Trip, payments []*domain.Payment) domain.DashboardStats {
	stats := domain.DashboardStats{TotalBookings: len(bookings)}
	for _, t := range trips {
		if t.Status == domain.TripStatusActive {
			stats.ActiveTrips++
		}
	}
	for _, p := range payments {
		if p.Status == domain.PaymentStatusCompleted {
			stats.TotalSpent += p.Amount
		}
	}
	return stats
}

// AdminDashboard aggregates platform-wide records.
func AdminDashboard(users int, bookings []*domain.Booking, payouts []*domain.Payout) domain.AdminStats {
	stats := domain.AdminStats{
		TotalUsers:     users,
		TotalBookings:  len(bookings),
		ActiveBookings: countActive(bookings),
	}
	for _, b := range bookings {
		if b.PaymentStatus == domain.PaymentStatusCompleted {
			stats.TotalRevenue += b.FinalPrice
		}
	}
	for _, p := range payouts {
		stats.AdminEarnings += p.AdminCommission
		if p.Status == domain.PayoutStatusPending {
			stats.PendingPayouts++
		}
	}
	return stats
}

func countActive(bookings []*domain.Booking) int {
	n := 0
	for _, b := range bookings {
		if b.Status.Active() {
			n++
		}
	}
	return n
}
