package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"fleet/internal/repository"
)

// Store hands out repositories bound either to the pool or to a transaction.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Repositories returns pool-bound repositories.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:    NewUserRepository(s.db),
		Trips:    NewTripRepository(s.db),
		Drivers:  NewDriverRepository(s.db),
		Dealers:  NewDealerRepository(s.db),
		Bookings: NewBookingRepository(s.db),
		Payments: NewPaymentRepository(s.db),
		Payouts:  NewPayoutRepository(s.db),
	}
}

// WithinTx runs fn inside a transaction. fn's error rolls it back.
func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txRepositories(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func txRepositories(tx *sql.Tx) repository.Repositories {
	return repository.Repositories{
		Users:    NewUserRepositoryWithTx(tx),
		Trips:    NewTripRepositoryWithTx(tx),
		Drivers:  NewDriverRepositoryWithTx(tx),
		Dealers:  NewDealerRepositoryWithTx(tx),
		Bookings: NewBookingRepositoryWithTx(tx),
		Payments: NewPaymentRepositoryWithTx(tx),
		Payouts:  NewPayoutRepositoryWithTx(tx),
	}
}

var _ repository.Transactor = (*Store)(nil)
