package repository

import "context"

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users    UserRepository
	Trips    TripRepository
	Drivers  DriverRepository
	Dealers  DealerRepository
	Bookings BookingRepository
	Payments PaymentRepository
	Payouts  PayoutRepository
}

// Transactor runs a unit of work against transaction-scoped repositories.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
