package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, user_id, city, base_location, start_date, end_date, purpose, notes, status, created_at`

func scanTrip(s rowScanner) (*domain.Trip, error) {
	var t domain.Trip
	var purpose, notes sql.NullString
	if err := s.Scan(&t.ID, &t.UserID, &t.City, &t.BaseLocation, &t.StartDate, &t.EndDate, &purpose, &notes, &t.Status, &t.CreatedAt); err != nil {
		return nil, translateErr(err)
	}
	t.Purpose = purpose.String
	t.Notes = notes.String
	return &t, nil
}

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `INSERT INTO trips (` + tripColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.UserID,
		trip.City,
		trip.BaseLocation,
		trip.StartDate,
		trip.EndDate,
		nullString(trip.Purpose),
		nullString(trip.Notes),
		trip.Status,
		trip.CreatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	return scanTrip(r.q.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
}

// ListByUser retrieves a user's trips, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Trip, error) {
	var w where
	w.add("user_id = ?", userID)
	query := `SELECT ` + tripColumns + ` FROM trips` + w.clause() + ` ORDER BY created_at DESC` + w.limit(limit)

	rows, err := r.q.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// UpdateStatus sets the status of a trip owned by userID.
func (r *TripRepository) UpdateStatus(ctx context.Context, id, userID string, status domain.TripStatus) error {
	res, err := r.q.ExecContext(ctx, `UPDATE trips SET status = $1 WHERE id = $2 AND user_id = $3`, status, id, userID)
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

var _ repository.TripRepository = (*TripRepository)(nil)
