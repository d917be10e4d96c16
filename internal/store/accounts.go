package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mintyhq/minty/internal/ledger"
)

// CreateAccount inserts a new account. Names are unique; a duplicate name
// fails with a validation-kind error.
func (s *Store) CreateAccount(ctx context.Context, name, currency string) (*ledger.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ledger.E(ledger.KindValidation, "account name is required")
	}

	acc := &ledger.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Currency:  strings.TrimSpace(currency),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, name, currency, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)`,
		acc.ID, acc.Name, acc.Currency, acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ledger.Wrap(ledger.KindValidation, err, "account '%s' already exists", name)
		}
		return nil, ledger.Wrap(ledger.KindStore, err, "create account '%s'", name)
	}

	return acc, nil
}

// ResolveAccount looks an account up by id first, then by name.
func (s *Store) ResolveAccount(ctx context.Context, ref string) (*ledger.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ledger.E(ledger.KindValidation, "account reference is required")
	}

	const query = `
		SELECT id, name, COALESCE(currency, ''), created_at
		FROM accounts
		WHERE id = $1 OR name = $1
		ORDER BY (id = $1) DESC
		LIMIT 1`

	var acc ledger.Account
	err := s.pool.QueryRow(ctx, query, ref).
		Scan(&acc.ID, &acc.Name, &acc.Currency, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ledger.E(ledger.KindNotFound, "account not found: '%s'", ref)
	}
	if err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "resolve account '%s'", ref)
	}

	return &acc, nil
}

// ListAccounts returns every account, oldest first.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, COALESCE(currency, ''), created_at
		FROM accounts
		ORDER BY created_at, name`)
	if err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list accounts")
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var acc ledger.Account
		if err := rows.Scan(&acc.ID, &acc.Name, &acc.Currency, &acc.CreatedAt); err != nil {
			return nil, ledger.Wrap(ledger.KindStore, err, "scan account")
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list accounts")
	}

	return accounts, nil
}
