package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `id, user_id, dealer_id, license_number, license_expiry, vehicle_number, vehicle_type, total_earnings, total_payouts, is_active, created_at`

func scanDriver(s rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var dealerID sql.NullString
	if err := s.Scan(
		&d.ID,
		&d.UserID,
		&dealerID,
		&d.LicenseNumber,
		&d.LicenseExpiry,
		&d.VehicleNumber,
		&d.VehicleType,
		&d.TotalEarnings,
		&d.TotalPayouts,
		&d.IsActive,
		&d.CreatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	d.DealerID = dealerID.String
	return &d, nil
}

// Create adds a new driver profile.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `INSERT INTO drivers (` + driverColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.ExecContext(ctx, query,
		driver.ID,
		driver.UserID,
		nullString(driver.DealerID),
		driver.LicenseNumber,
		driver.LicenseExpiry,
		driver.VehicleNumber,
		driver.VehicleType,
		driver.TotalEarnings,
		driver.TotalPayouts,
		driver.IsActive,
		driver.CreatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return scanDriver(r.q.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id))
}

// GetByUserID retrieves the driver profile of a user.
func (r *DriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return scanDriver(r.q.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE user_id = $1 LIMIT 1`, userID))
}

// List retrieves drivers matching the filter, newest first.
func (r *DriverRepository) List(ctx context.Context, filter repository.DriverFilter) ([]*domain.Driver, error) {
	var w where
	if filter.DealerID != "" {
		w.add("dealer_id = ?", filter.DealerID)
	}
	if filter.VehicleType != "" {
		w.add("vehicle_type = ?", filter.VehicleType)
	}
	if filter.ActiveOnly {
		w.add("is_active = ?", true)
	}
	query := `SELECT ` + driverColumns + ` FROM drivers` + w.clause() + ` ORDER BY created_at DESC` + w.limit(filter.Limit)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// AddEarnings increments total_earnings by delta.
func (r *DriverRepository) AddEarnings(ctx context.Context, id string, delta float64) error {
	return increment(ctx, r.q, "drivers", "total_earnings", id, delta)
}

// AddPayouts increments total_payouts by delta.
func (r *DriverRepository) AddPayouts(ctx context.Context, id string, delta float64) error {
	return increment(ctx, r.q, "drivers", "total_payouts", id, delta)
}

// increment adds delta to a numeric column in place so concurrent writers
// never overwrite each other.
func increment(ctx context.Context, q Querier, table, column, id string, delta float64) error {
	query := `UPDATE ` + table + ` SET ` + column + ` = ` + column + ` + $1 WHERE id = $2`
	res, err := q.ExecContext(ctx, query, delta, id)
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

var _ repository.DriverRepository = (*DriverRepository)(nil)
