package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

var bookingRowColumns = []string{
	"id", "trip_id", "user_id", "driver_id", "dealer_id", "base_fare", "estimated_km", "per_km_rate",
	"per_day_rate", "total_days", "final_price", "pickup_location", "dropoff_location", "booking_date",
	"status", "payment_status", "created_at",
}

func TestBookingCompareAndSetStatus_WritesAssignment(t *testing.T) {
	store, mock := newMock(t)
	repos := store.Repositories()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1, driver_id = $2, dealer_id = $3 WHERE id = $4 AND status = $5`)).
		WithArgs("ACCEPTED", "drv-1", "dlr-1", "bk-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repos.Bookings.CompareAndSetStatus(context.Background(), "bk-1",
		domain.BookingStatusPending, domain.BookingStatusAccepted,
		&domain.Assignment{DriverID: "drv-1", DealerID: "dlr-1"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCompareAndSetStatus_IndependentDriverClearsDealer(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1, driver_id = $2, dealer_id = $3`)).
		WithArgs("ACCEPTED", "drv-1", nil, "bk-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := store.Repositories().Bookings.CompareAndSetStatus(context.Background(), "bk-1",
		domain.BookingStatusPending, domain.BookingStatusAccepted,
		&domain.Assignment{DriverID: "drv-1"})
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCompareAndSetStatus_LostRace(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = $1 WHERE id = $2 AND status = $3`)).
		WithArgs("COMPLETED", "bk-1", "IN_PROGRESS").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.Repositories().Bookings.CompareAndSetStatus(context.Background(), "bk-1",
		domain.BookingStatusInProgress, domain.BookingStatusCompleted, nil)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingList_BuildsFilter(t *testing.T) {
	store, mock := newMock(t)
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM bookings WHERE driver_id = $1 AND dealer_id = $2 ORDER BY created_at DESC LIMIT $3`)).
		WithArgs("drv-1", "dlr-1", int64(10)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow("bk-1", "tr-1", "u-1", "drv-1", "dlr-1", 50.0, 10.0, 5.0, 200.0, int64(1), 300.0,
				"A", "B", "2025-03-02", "COMPLETED", "COMPLETED", created).
			AddRow("bk-2", "tr-1", "u-1", "drv-1", "dlr-1", 50.0, 0.0, 5.0, 200.0, int64(2), 450.0,
				"A", "C", "2025-03-03", "PENDING", "PENDING", created))

	bookings, err := store.Repositories().Bookings.List(context.Background(),
		repository.BookingFilter{DriverID: "drv-1", DealerID: "dlr-1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, domain.BookingStatusCompleted, bookings[0].Status)
	assert.Equal(t, 2, bookings[1].TotalDays)
	assert.Equal(t, "dlr-1", bookings[0].DealerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingGetByID_NotFound(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(`FROM bookings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(bookingRowColumns))

	_, err := store.Repositories().Bookings.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPayoutCreateIfAbsent(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "inserted", affected: 1, want: true},
		{name: "already generated", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (booking_id) DO NOTHING`)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := store.Repositories().Payouts.CreateIfAbsent(context.Background(), &domain.Payout{
				ID:              "po-1",
				BookingID:       "bk-1",
				BookingPrice:    300,
				AdminCommission: 30,
				DriverAmount:    270,
				DriverID:        "drv-1",
				Status:          domain.PayoutStatusPending,
				CreatedAt:       time.Now(),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPayoutMarkProcessed_OnlyFromPending(t *testing.T) {
	store, mock := newMock(t)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE payouts SET status = $1, admin_id = $2, processed_at = $3 WHERE id = $4 AND status = $5`)).
		WithArgs("PROCESSED", "admin-1", at, "po-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.Repositories().Payouts.MarkProcessed(context.Background(), "po-1", "admin-1", at)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Repositories().Users.Create(context.Background(), &domain.User{
		ID:    "u-1",
		Name:  "Asha",
		Email: "asha@example.com",
		Role:  domain.RoleCustomer,
	})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestDriverAddEarnings_Increments(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE drivers SET total_earnings = total_earnings + $1 WHERE id = $2`)).
		WithArgs(210.6, "drv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE dealers SET total_payouts = total_payouts + $1 WHERE id = $2`)).
		WithArgs(59.4, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repos := store.Repositories()
	require.NoError(t, repos.Drivers.AddEarnings(context.Background(), "drv-1", 210.6))
	assert.ErrorIs(t, repos.Dealers.AddPayouts(context.Background(), "missing", 59.4), repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripUpdateStatus_RequiresOwner(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE trips SET status = $1 WHERE id = $2 AND user_id = $3`)).
		WithArgs("COMPLETED", "tr-1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Repositories().Trips.UpdateStatus(context.Background(), "tr-1", "someone-else", domain.TripStatusCompleted)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON CONFLICT").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		if _, err := repos.Bookings.CompareAndSetStatus(context.Background(), "bk-1",
			domain.BookingStatusInProgress, domain.BookingStatusCompleted, nil); err != nil {
			return err
		}
		_, err := repos.Payouts.CreateIfAbsent(context.Background(), &domain.Payout{ID: "po-1", BookingID: "bk-1"})
		return err
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	store, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE bookings SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(repos repository.Repositories) error {
		if _, err := repos.Bookings.CompareAndSetStatus(context.Background(), "bk-1",
			domain.BookingStatusInProgress, domain.BookingStatusCompleted, nil); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
