package postgres

import (
	"context"
	"database/sql"

	"fleet/internal/domain"
	"fleet/internal/repository"
)

// DealerRepository is a PostgreSQL implementation of repository.DealerRepository.
type DealerRepository struct {
	q Querier
}

// NewDealerRepository creates a new PostgreSQL dealer repository.
func NewDealerRepository(db *sql.DB) *DealerRepository {
	return &DealerRepository{q: db}
}

// NewDealerRepositoryWithTx creates a dealer repository using a transaction.
func NewDealerRepositoryWithTx(tx *sql.Tx) *DealerRepository {
	return &DealerRepository{q: tx}
}

const dealerColumns = `id, user_id, company_name, company_registration, tax_id, bank_account, bank_ifsc, commission_percent, total_earnings, total_payouts, created_at`

func scanDealer(s rowScanner) (*domain.Dealer, error) {
	var d domain.Dealer
	var reg, taxID, account, ifsc sql.NullString
	if err := s.Scan(
		&d.ID,
		&d.UserID,
		&d.CompanyName,
		&reg,
		&taxID,
		&account,
		&ifsc,
		&d.CommissionPercent,
		&d.TotalEarnings,
		&d.TotalPayouts,
		&d.CreatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	d.CompanyRegistration = reg.String
	d.TaxID = taxID.String
	d.BankAccount = account.String
	d.BankIFSC = ifsc.String
	return &d, nil
}

// Create adds a new dealer profile.
func (r *DealerRepository) Create(ctx context.Context, dealer *domain.Dealer) error {
	query := `INSERT INTO dealers (` + dealerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.ExecContext(ctx, query,
		dealer.ID,
		dealer.UserID,
		dealer.CompanyName,
		nullString(dealer.CompanyRegistration),
		nullString(dealer.TaxID),
		nullString(dealer.BankAccount),
		nullString(dealer.BankIFSC),
		dealer.CommissionPercent,
		dealer.TotalEarnings,
		dealer.TotalPayouts,
		dealer.CreatedAt,
	)
	return translateErr(err)
}

// GetByID retrieves a dealer by ID.
func (r *DealerRepository) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	return scanDealer(r.q.QueryRowContext(ctx, `SELECT `+dealerColumns+` FROM dealers WHERE id = $1`, id))
}

// GetByUserID retrieves the dealer profile of a user.
func (r *DealerRepository) GetByUserID(ctx context.Context, userID string) (*domain.Dealer, error) {
	return scanDealer(r.q.QueryRowContext(ctx, `SELECT `+dealerColumns+` FROM dealers WHERE user_id = $1 LIMIT 1`, userID))
}

// AddEarnings increments total_earnings by delta.
func (r *DealerRepository) AddEarnings(ctx context.Context, id string, delta float64) error {
	return increment(ctx, r.q, "dealers", "total_earnings", id, delta)
}

// AddPayouts increments total_payouts by delta.
func (r *DealerRepository) AddPayouts(ctx context.Context, id string, delta float64) error {
	return increment(ctx, r.q, "dealers", "total_payouts", id, delta)
}

var _ repository.DealerRepository = (*DealerRepository)(nil)
