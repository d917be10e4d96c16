package ledger

import "context"

// TxBatch is one atomic transaction-insert batch. Inserts staged through it
// become durable only on Commit; any failure rolls back every row.
type TxBatch interface {
	// InsertTransaction inserts one transaction unless the (account, hash)
	// pair already exists. Returns false for the dedup no-op.
	InsertTransaction(ctx context.Context, t *Transaction) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context)
}

// Store is the persistence boundary of the ingestion core. The Postgres
// implementation lives in internal/store; an in-memory one backs tests.
type Store interface {
	CreateAccount(ctx context.Context, name, currency string) (*Account, error)
	ResolveAccount(ctx context.Context, ref string) (*Account, error)
	ListAccounts(ctx context.Context) ([]Account, error)

	// StartRun commits the run placeholder immediately and independently
	// of any batch, so it survives a crash mid-ingest.
	StartRun(ctx context.Context, run *IngestRun) error
	FinalizeRunSuccess(ctx context.Context, runID string) error
	FinalizeRunFailure(ctx context.Context, runID, message string) error
	ListRuns(ctx context.Context, accountID string) ([]IngestRun, error)

	// BeginBatch opens the atomic insert batch for one account and takes
	// that account's writer lock.
	BeginBatch(ctx context.Context, accountID string) (TxBatch, error)
	ListTransactions(ctx context.Context, accountID string) ([]Transaction, error)
}
