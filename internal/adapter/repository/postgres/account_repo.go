package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
)

const accountColumns = `id, user_id, account_number, currency, balance, provider, external_id, is_default, created_at, updated_at`

// AccountRepository implements usecase.AccountRepository on PostgreSQL.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByAccountNumber retrieves an account by its public account number.
func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, accountNumber)
	return scanAccount(row)
}

// FindDefaultByUser retrieves a user's default account.
func (r *AccountRepository) FindDefaultByUser(ctx context.Context, userID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 AND is_default = true`, userID)
	return scanAccount(row)
}

// GetByIDsForUpdate locks the given accounts inside tx with FOR UPDATE.
// Callers pass sorted IDs; ordering the lock acquisition the same way in
// every settlement prevents deadlocks between concurrent workers.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Tx, ids []string) ([]*domain.Account, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// UpdateBalance sets an account's balance inside tx.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Tx, id string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx,
		`UPDATE accounts SET balance = $2, updated_at = $3 WHERE id = $1`,
		id, balance, updatedAt)

	return err
}

// AddToBalance atomically increments a balance. Used only by the funding
// flow; settlements go through UpdateBalance under FOR UPDATE locks.
func (r *AccountRepository) AddToBalance(ctx context.Context, id string, amount decimal.Decimal) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+accountColumns,
		id, amount)

	return scanAccount(row)
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AccountNumber,
		&a.Currency,
		&a.Balance,
		&a.Provider,
		&a.ExternalID,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return &a, nil
}
