package postgres

import (
	"context"
	"database/sql"
	"time"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// PayoutRepository is a PostgreSQL implementation of repository.PayoutRepository.
type PayoutRepository struct {
	q Querier
}

// NewPayoutRepository creates a new PostgreSQL payout repository.
func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{q: db}
}

// NewPayoutRepositoryWithTx creates a payout repository using a transaction.
func NewPayoutRepositoryWithTx(tx *sql.Tx) *PayoutRepository {
	return &PayoutRepository{q: tx}
}

const payoutColumns = `id, booking_id, booking_price, admin_commission, dealer_amount, dealer_commission, driver_amount, dealer_id, driver_id, admin_id, status, processed_at, created_at`

func scanPayout(s rowScanner) (*domain.Payout, error) {
	var p domain.Payout
	var dealerID, driverID, adminID sql.NullString
	var processedAt sql.NullTime
	if err := s.Scan(
		&p.ID,
		&p.BookingID,
		&p.BookingPrice,
		&p.AdminCommission,
		&p.DealerAmount,
		&p.DealerCommission,
		&p.DriverAmount,
		&dealerID,
		&driverID,
		&adminID,
		&p.Status,
		&processedAt,
		&p.CreatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	p.DealerID = dealerID.String
	p.DriverID = driverID.String
	p.AdminID = adminID.String
	if processedAt.Valid {
		p.ProcessedAt = processedAt.Time
	}
	return &p, nil
}

// CreateIfAbsent inserts the payout unless its booking already has one.
// The unique index on booking_id makes concurrent attempts collapse to one row.
func (r *PayoutRepository) CreateIfAbsent(ctx context.Context, payout *domain.Payout) (bool, error) {
	query := `
		INSERT INTO payouts (` + payoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (booking_id) DO NOTHING
	`
	var processedAt sql.NullTime
	if !payout.ProcessedAt.IsZero() {
		processedAt = sql.NullTime{Time: payout.ProcessedAt, Valid: true}
	}
	res, err := r.q.ExecContext(ctx, query,
		payout.ID,
		payout.BookingID,
		payout.BookingPrice,
		payout.AdminCommission,
		payout.DealerAmount,
		payout.DealerCommission,
		payout.DriverAmount,
		nullString(payout.DealerID),
		nullString(payout.DriverID),
		nullString(payout.AdminID),
		payout.Status,
		processedAt,
		payout.CreatedAt,
	)
	if err != nil {
		return false, translateErr(err)
	}
	return exactlyOne(res)
}

// GetByID retrieves a payout by ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	return scanPayout(r.q.QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id))
}

// GetByBookingID retrieves the payout generated for a booking.
func (r *PayoutRepository) GetByBookingID(ctx context.Context, bookingID string) (*domain.Payout, error) {
	return scanPayout(r.q.QueryRowContext(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE booking_id = $1`, bookingID))
}

// List retrieves payouts matching the filter, newest first.
func (r *PayoutRepository) List(ctx context.Context, filter repository.PayoutFilter) ([]*domain.Payout, error) {
	var w where
	if filter.DriverID != "" {
		w.add("driver_id = ?", filter.DriverID)
	}
	if filter.DealerID != "" {
		w.add("dealer_id = ?", filter.DealerID)
	}
	query := `SELECT ` + payoutColumns + ` FROM payouts` + w.clause() + ` ORDER BY created_at DESC` + w.limit(filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// MarkProcessed moves a PENDING payout to PROCESSED.
func (r *PayoutRepository) MarkProcessed(ctx context.Context, id, adminID string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE payouts SET status = $1, admin_id = $2, processed_at = $3 WHERE id = $4 AND status = $5`,
		domain.PayoutStatusProcessed, adminID, at, id, domain.PayoutStatusPending,
	)
	if err != nil {
		return false, err
	}
	return exactlyOne(res)
}

var _ repository.PayoutRepository = (*PayoutRepository)(nil)
