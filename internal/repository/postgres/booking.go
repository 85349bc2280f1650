package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q Querier
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx}
}

const bookingColumns = `id, trip_id, user_id, driver_id, dealer_id, base_fare, estimated_km, per_km_rate, per_day_rate, total_days, final_price, pickup_location, dropoff_location, booking_date, status, payment_status, created_at`

func scanBooking(s rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var driverID, dealerID sql.NullString
	if err := s.Scan(
		&b.ID,
		&b.TripID,
		&b.UserID,
		&driverID,
		&dealerID,
		&b.BaseFare,
		&b.EstimatedKm,
		&b.PerKmRate,
		&b.PerDayRate,
		&b.TotalDays,
		&b.FinalPrice,
		&b.PickupLocation,
		&b.DropoffLocation,
		&b.BookingDate,
		&b.Status,
		&b.PaymentStatus,
		&b.CreatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	b.DriverID = driverID.String
	b.DealerID = dealerID.String
	return &b, nil
}

// Create persists a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.q.ExecContext(ctx, query,
		booking.ID,
		booking.TripID,
		booking.UserID,
		nullString(booking.DriverID),
		nullString(booking.DealerID),
		booking.BaseFare,
		booking.EstimatedKm,
		booking.PerKmRate,
		booking.PerDayRate,
		booking.TotalDays,
		booking.FinalPrice,
		booking.PickupLocation,
		booking.DropoffLocation,
		booking.BookingDate,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return scanBooking(r.q.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

// List retrieves bookings matching the filter, newest first.
func (r *BookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	var w where
	if filter.UserID != "" {
		w.add("user_id = ?", filter.UserID)
	}
	if filter.DriverID != "" {
		w.add("driver_id = ?", filter.DriverID)
	}
	if filter.DealerID != "" {
		w.add("dealer_id = ?", filter.DealerID)
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + w.clause() + ` ORDER BY created_at DESC` + w.limit(filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CompareAndSetStatus moves a booking from `from` to `to` only if it is
// still in `from`. The status check and the write happen in one statement.
func (r *BookingRepository) CompareAndSetStatus(ctx context.Context, id string, from, to domain.BookingStatus, assign *domain.Assignment) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if assign != nil {
		res, err = r.q.ExecContext(ctx,
			`UPDATE bookings SET status = $1, driver_id = $2, dealer_id = $3 WHERE id = $4 AND status = $5`,
			to, nullString(assign.DriverID), nullString(assign.DealerID), id, from,
		)
	} else {
		res, err = r.q.ExecContext(ctx,
			`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`,
			to, id, from,
		)
	}
	if err != nil {
		return false, err
	}
	return exactlyOne(res)
}

// SetPaymentStatus overwrites the payment status of a booking.
func (r *BookingRepository) SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE bookings SET payment_status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	ok, err := exactlyOne(res)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.BookingRepository = (*BookingRepository)(nil)
