package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mintyhq/minty/internal/ledger"
)

// StartRun persists the run placeholder and commits it immediately, outside
// any batch transaction, so a crash during row processing leaves a
// diagnosable failed run rather than no record at all. The placeholder is
// born with status=failed / error=incomplete.
func (s *Store) StartRun(ctx context.Context, run *ledger.IngestRun) error {
	meta, err := json.Marshal(run.SourceMeta)
	if err != nil {
		return ledger.Wrap(ledger.KindStore, err, "encode source meta")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ingest_runs
			(id, account_id, source_type, source_meta, started_at, ended_at, status, error)
		VALUES ($1, $2, $3, $4, $5, NULL, $6, $7)`,
		run.ID, run.AccountID, run.SourceType, meta, run.StartedAt,
		string(ledger.RunFailed), ledger.RunErrIncomplete)
	if err != nil {
		return ledger.Wrap(ledger.KindStore, err, "start ingest run")
	}

	return nil
}

// FinalizeRunSuccess transitions a run to its successful terminal state.
func (s *Store) FinalizeRunSuccess(ctx context.Context, runID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE ingest_runs
		SET status = $1, error = NULL, ended_at = $2
		WHERE id = $3 AND ended_at IS NULL`,
		string(ledger.RunSuccess), time.Now().UTC(), runID)
	if err != nil {
		return ledger.Wrap(ledger.KindStore, err, "finalize ingest run %s", runID)
	}
	return nil
}

// FinalizeRunFailure transitions a run to its failed terminal state with
// the terminal error message.
func (s *Store) FinalizeRunFailure(ctx context.Context, runID, message string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE ingest_runs
		SET status = $1, error = $2, ended_at = $3
		WHERE id = $4 AND ended_at IS NULL`,
		string(ledger.RunFailed), message, time.Now().UTC(), runID)
	if err != nil {
		return ledger.Wrap(ledger.KindStore, err, "finalize ingest run %s", runID)
	}
	return nil
}

// ListRuns returns an account's ingest runs, newest first.
func (s *Store) ListRuns(ctx context.Context, accountID string) ([]ledger.IngestRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, account_id, source_type, source_meta, started_at, ended_at, status, error
		FROM ingest_runs
		WHERE account_id = $1
		ORDER BY started_at DESC`,
		accountID)
	if err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list ingest runs")
	}
	defer rows.Close()

	var runs []ledger.IngestRun
	for rows.Next() {
		var (
			run    ledger.IngestRun
			meta   []byte
			status string
		)
		if err := rows.Scan(&run.ID, &run.AccountID, &run.SourceType, &meta,
			&run.StartedAt, &run.EndedAt, &status, &run.Error); err != nil {
			return nil, ledger.Wrap(ledger.KindStore, err, "scan ingest run")
		}
		run.Status = ledger.RunStatus(status)
		if err := json.Unmarshal(meta, &run.SourceMeta); err != nil {
			return nil, ledger.Wrap(ledger.KindStore, err, "decode source meta for run %s", run.ID)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap(ledger.KindStore, err, "list ingest runs")
	}

	return runs, nil
}
