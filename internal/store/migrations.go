package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrations is the ordered set of idempotent schema scripts. Each script
// can be re-applied safely; cmd/migrate runs them in order inside one
// transaction.
var Migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		currency   TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS accounts_name_unique ON accounts (name)`,
	`CREATE TABLE IF NOT EXISTS ingest_runs (
		id          TEXT PRIMARY KEY,
		account_id  TEXT NOT NULL REFERENCES accounts (id),
		source_type TEXT NOT NULL,
		source_meta JSONB NOT NULL,
		started_at  TIMESTAMPTZ NOT NULL,
		ended_at    TIMESTAMPTZ,
		status      TEXT NOT NULL,
		error       TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS ingest_runs_account_started ON ingest_runs (account_id, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                  TEXT PRIMARY KEY,
		account_id          TEXT NOT NULL REFERENCES accounts (id),
		posted_at           TEXT NOT NULL,
		amount              BIGINT NOT NULL,
		currency            TEXT NOT NULL,
		raw_description     TEXT NOT NULL,
		normalized_merchant TEXT NOT NULL,
		category            TEXT,
		category_confidence DOUBLE PRECISION,
		category_source     TEXT NOT NULL DEFAULT 'none',
		external_id         TEXT,
		hash                TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS transactions_account_hash_unique ON transactions (account_id, hash)`,
	`CREATE INDEX IF NOT EXISTS transactions_account_posted ON transactions (account_id, posted_at DESC)`,
}

// Migrate applies every schema script in order within one transaction,
// using the database/sql pgx driver so it works from the migrate command.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, script := range Migrations {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
