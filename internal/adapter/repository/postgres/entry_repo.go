package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbridge/remit/internal/domain"
	"github.com/finbridge/remit/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository on PostgreSQL.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// CreateBatch inserts all entries inside tx as one batch. Entries are
// immutable after insert.
func (r *EntryRepository) CreateBatch(ctx context.Context, tx usecase.Tx, entries []*domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO ledger_entries (id, account_id, amount, currency, entry_type, reference, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, e.AccountID, e.Amount, e.Currency, e.Type, e.Reference, e.Description, e.CreatedAt)
	}

	results := pgxTx.SendBatch(ctx, batch)
	defer results.Close()

	for range entries {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// GetByReference lists the entries recorded for one settlement reference.
func (r *EntryRepository) GetByReference(ctx context.Context, reference string) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, currency, entry_type, reference, description, created_at
		FROM ledger_entries WHERE reference = $1 ORDER BY created_at`, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry

		err := rows.Scan(&e.ID, &e.AccountID, &e.Amount, &e.Currency, &e.Type, &e.Reference, &e.Description, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}
