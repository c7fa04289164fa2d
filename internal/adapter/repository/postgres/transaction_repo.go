package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
)

const transactionColumns = `id, sender_id, receiver_id, source_amount, target_amount, source_currency,
	target_currency, exchange_rate, fee, status, payment_provider, payment_reference, failure_reason,
	created_at, updated_at`

// TransactionRepository implements usecase.TransactionRepository on
// PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new transaction record.
func (r *TransactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (
			id, sender_id, receiver_id, source_amount, target_amount, source_currency,
			target_currency, exchange_rate, fee, status, payment_provider, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		txn.ID,
		txn.SenderID,
		txn.ReceiverID,
		txn.SourceAmount,
		txn.TargetAmount,
		txn.SourceCurrency,
		txn.TargetCurrency,
		txn.ExchangeRate,
		txn.Fee,
		txn.Status,
		txn.PaymentProvider,
		txn.CreatedAt,
		txn.UpdatedAt,
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

// GetWithParties retrieves a transaction together with both users and all
// their accounts.
func (r *TransactionRepository) GetWithParties(ctx context.Context, id string) (*domain.TransactionWithParties, error) {
	txn, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sender, err := r.getUserWithAccounts(ctx, txn.SenderID)
	if err != nil {
		return nil, err
	}

	receiver, err := r.getUserWithAccounts(ctx, txn.ReceiverID)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionWithParties{
		Transaction: txn,
		Sender:      sender,
		Receiver:    receiver,
	}, nil
}

// UpdateStatusIf is the status-guarded compare-and-swap: one UPDATE whose
// WHERE clause pins the expected prior status. The affected-row count tells
// the caller whether it won the claim.
func (r *TransactionRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.TransactionStatus) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status = $3, updated_at = now() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// CompleteInTx flips PROCESSING to COMPLETED inside the settlement's
// database transaction, committing or rolling back with the balance writes.
func (r *TransactionRepository) CompleteInTx(ctx context.Context, tx usecase.Tx, id string) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx,
		`UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`,
		id, domain.StatusCompleted, domain.StatusProcessing)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// MarkFailed records a terminal failure with its reason. Transactions
// already in a terminal state are left untouched, so a late gateway event
// cannot overwrite a completed settlement.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET status = $2, failure_reason = $3, updated_at = now()
		 WHERE id = $1 AND status = ANY($4)`,
		id, domain.StatusFailed, reason,
		[]string{string(domain.StatusPending), string(domain.StatusProcessing)})

	return err
}

// SetPaymentReference stores the gateway's reference on the transaction.
func (r *TransactionRepository) SetPaymentReference(ctx context.Context, id, provider, reference string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE transactions SET payment_provider = $2, payment_reference = $3, updated_at = now() WHERE id = $1`,
		id, provider, reference)

	return err
}

// ListPendingCreatedBefore lists PENDING transactions older than cutoff.
func (r *TransactionRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	return r.listPending(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE status = $1 AND created_at < $2 ORDER BY created_at LIMIT $3`,
		cutoff, limit)
}

// ListPendingCreatedAfter lists PENDING transactions at or younger than cutoff.
func (r *TransactionRepository) ListPendingCreatedAfter(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	return r.listPending(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE status = $1 AND created_at >= $2 ORDER BY created_at LIMIT $3`,
		cutoff, limit)
}

func (r *TransactionRepository) listPending(ctx context.Context, query string, cutoff time.Time, limit int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, query, domain.StatusPending, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}

		txns = append(txns, txn)
	}

	return txns, rows.Err()
}

func (r *TransactionRepository) getUserWithAccounts(ctx context.Context, userID string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, email, first_name, last_name, phone_number, created_at FROM users WHERE id = $1`, userID)

	var u domain.User

	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}

		return nil, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}

		u.Accounts = append(u.Accounts, account)
	}

	return &u, rows.Err()
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.SenderID,
		&t.ReceiverID,
		&t.SourceAmount,
		&t.TargetAmount,
		&t.SourceCurrency,
		&t.TargetCurrency,
		&t.ExchangeRate,
		&t.Fee,
		&t.Status,
		&t.PaymentProvider,
		&t.PaymentReference,
		&t.FailureReason,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return &t, nil
}
