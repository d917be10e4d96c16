// Package memory provides an in-memory ledger.Store used by tests and
// storeless local runs. It honors the same contracts as the Postgres
// store: unique account names, the (account, hash) dedup no-op, immediate
// run-placeholder durability and all-or-nothing batches.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mintyhq/minty/internal/ledger"
)

// Store keeps everything in maps guarded by one mutex.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]ledger.Account // by id
	runs         map[string]ledger.IngestRun
	transactions map[string]ledger.Transaction // by id
	byHash       map[string]map[string]string  // accountID → hash → txID
	runOrder     []string
	batchLocks   map[string]*sync.Mutex // per-account writer locks
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]ledger.Account),
		runs:         make(map[string]ledger.IngestRun),
		transactions: make(map[string]ledger.Transaction),
		byHash:       make(map[string]map[string]string),
		batchLocks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) CreateAccount(ctx context.Context, name, currency string) (*ledger.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ledger.E(ledger.KindValidation, "account name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.Name == name {
			return nil, ledger.E(ledger.KindValidation, "account '%s' already exists", name)
		}
	}

	acc := ledger.Account{
		ID:        uuid.NewString(),
		Name:      name,
		Currency:  strings.TrimSpace(currency),
		CreatedAt: time.Now().UTC(),
	}
	s.accounts[acc.ID] = acc
	return &acc, nil
}

func (s *Store) ResolveAccount(ctx context.Context, ref string) (*ledger.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ledger.E(ledger.KindValidation, "account reference is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[ref]; ok {
		return &acc, nil
	}
	for _, acc := range s.accounts {
		if acc.Name == ref {
			return &acc, nil
		}
	}
	return nil, ledger.E(ledger.KindNotFound, "account not found: '%s'", ref)
}

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]ledger.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (s *Store) StartRun(ctx context.Context, run *ledger.IngestRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The placeholder is born failed/incomplete regardless of caller input,
	// matching the durable-placeholder contract of the Postgres store.
	stored := *run
	stored.Status = ledger.RunFailed
	msg := ledger.RunErrIncomplete
	stored.Error = &msg
	stored.EndedAt = nil

	s.runs[stored.ID] = stored
	s.runOrder = append(s.runOrder, stored.ID)
	return nil
}

func (s *Store) FinalizeRunSuccess(ctx context.Context, runID string) error {
	return s.finalize(runID, ledger.RunSuccess, nil)
}

func (s *Store) FinalizeRunFailure(ctx context.Context, runID, message string) error {
	return s.finalize(runID, ledger.RunFailed, &message)
}

func (s *Store) finalize(runID string, status ledger.RunStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return ledger.E(ledger.KindNotFound, "ingest run not found: '%s'", runID)
	}
	if run.EndedAt != nil {
		// Terminal states are not re-enterable.
		return nil
	}

	now := time.Now().UTC()
	run.Status = status
	run.Error = errMsg
	run.EndedAt = &now
	s.runs[runID] = run
	return nil
}

func (s *Store) ListRuns(ctx context.Context, accountID string) ([]ledger.IngestRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var runs []ledger.IngestRun
	for i := len(s.runOrder) - 1; i >= 0; i-- {
		if run := s.runs[s.runOrder[i]]; run.AccountID == accountID {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (s *Store) ListTransactions(ctx context.Context, accountID string) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txs []ledger.Transaction
	for _, t := range s.transactions {
		if t.AccountID == accountID {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

// batch stages inserts and applies them all at once on Commit. It holds the
// account's writer lock for its whole lifetime.
type batch struct {
	store     *Store
	accountID string
	lock      *sync.Mutex
	staged    []ledger.Transaction
	done      bool
}

// BeginBatch takes the account's writer lock, mirroring the advisory lock
// the Postgres store holds, so concurrent batches into one account
// serialize and cannot both stage the same (account, hash).
func (s *Store) BeginBatch(ctx context.Context, accountID string) (ledger.TxBatch, error) {
	s.mu.Lock()
	lock, ok := s.batchLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.batchLocks[accountID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return &batch{store: s, accountID: accountID, lock: lock}, nil
}

func (b *batch) InsertTransaction(ctx context.Context, t *ledger.Transaction) (bool, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	if _, ok := b.store.byHash[t.AccountID][t.Hash]; ok {
		return false, nil
	}
	for _, staged := range b.staged {
		if staged.AccountID == t.AccountID && staged.Hash == t.Hash {
			return false, nil
		}
	}

	b.staged = append(b.staged, *t)
	return true, nil
}

func (b *batch) Commit(ctx context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	if b.done {
		return nil
	}
	b.done = true
	defer b.lock.Unlock()

	for _, t := range b.staged {
		b.store.transactions[t.ID] = t
		hashes, ok := b.store.byHash[t.AccountID]
		if !ok {
			hashes = make(map[string]string)
			b.store.byHash[t.AccountID] = hashes
		}
		hashes[t.Hash] = t.ID
	}
	return nil
}

func (b *batch) Rollback(ctx context.Context) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	if !b.done {
		b.staged = nil
		b.done = true
		b.lock.Unlock()
	}
}

var _ ledger.Store = (*Store)(nil)
