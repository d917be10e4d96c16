// Package store persists ledger accounts, transactions and ingest runs in
// PostgreSQL via pgx.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mintyhq/minty/internal/ledger"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store is the Postgres-backed ledger store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store on top of an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Batch is one atomic transaction-insert batch. Either every inserted row
// persists on Commit, or none do. The underlying database transaction also
// holds a per-account advisory lock so concurrent ingests into the same
// account serialize and readers never observe a partial batch.
type Batch struct {
	tx pgx.Tx
}

// BeginBatch opens the atomic insert transaction for one account and takes
// the account's writer lock.
func (s *Store) BeginBatch(ctx context.Context, accountID string) (ledger.TxBatch, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "begin transaction")
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, accountID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, ledger.Wrap(ledger.KindStore, err, "acquire account lock")
	}

	return &Batch{tx: tx}, nil
}

// InsertTransaction inserts one transaction unless a row with the same
// (account, hash) already exists. Returns false on the dedup no-op.
func (b *Batch) InsertTransaction(ctx context.Context, t *ledger.Transaction) (bool, error) {
	tag, err := insertTransaction(ctx, b.tx, t)
	if err != nil {
		return false, ledger.Wrap(ledger.KindStore, err, "insert transaction")
	}
	return tag.RowsAffected() > 0, nil
}

// Commit makes the batch durable.
func (b *Batch) Commit(ctx context.Context) error {
	if err := b.tx.Commit(ctx); err != nil {
		return ledger.Wrap(ledger.KindStore, err, "commit batch")
	}
	return nil
}

// Rollback discards the batch. Safe to call after Commit.
func (b *Batch) Rollback(ctx context.Context) {
	_ = b.tx.Rollback(ctx)
}

var _ ledger.Store = (*Store)(nil)
