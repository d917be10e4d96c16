package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mintyhq/minty/internal/ledger"
)

// insertTransaction is shared by Batch and by any direct single-row insert.
// The ON CONFLICT clause implements the (account_id, hash) dedup contract:
// a duplicate is a zero-row no-op, not an error.
func insertTransaction(ctx context.Context, db DBTX, t *ledger.Transaction) (pgconn.CommandTag, error) {
	return db.Exec(ctx, `
		INSERT INTO transactions
			(id, account_id, posted_at, amount, currency, raw_description,
			 normalized_merchant, category, category_confidence, category_source,
			 external_id, hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (account_id, hash) DO NOTHING`,
		t.ID, t.AccountID, t.PostedAt, t.Amount, t.Currency, t.RawDescription,
		t.NormalizedMerchant, t.Category, t.CategoryConfidence, t.CategorySource,
		t.ExternalID, t.Hash, t.CreatedAt)
}

// ListTransactions returns an account's transactions, newest posting first.
func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, posted_at, amount, currency, raw_description,
		       normalized_merchant, category, category_confidence, category_source,
		       external_id, hash, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY posted_at DESC, created_at DESC`,
		accountID)
	if err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list transactions")
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var t ledger.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.PostedAt, &t.Amount, &t.Currency,
			&t.RawDescription, &t.NormalizedMerchant, &t.Category, &t.CategoryConfidence,
			&t.CategorySource, &t.ExternalID, &t.Hash, &t.CreatedAt); err != nil {
			return nil, ledger.Wrap(ledger.KindStore, err, "scan transaction")
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list transactions")
	}

	return txs, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
