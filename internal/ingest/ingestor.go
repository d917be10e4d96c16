// Package ingest implements the CSV transaction-ingestion pipeline: it
// turns an arbitrary bank-export CSV file into deduplicated, canonicalized
// ledger transactions while recording a crash-safe ingest-run audit trail.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mintyhq/minty/internal/csvfile"
	"github.com/mintyhq/minty/internal/dates"
	"github.com/mintyhq/minty/internal/events"
	"github.com/mintyhq/minty/internal/ledger"
	"github.com/mintyhq/minty/internal/money"
	"github.com/mintyhq/minty/internal/normalize"
)

// Options are the invocation parameters of one CSV ingest.
type Options struct {
	// AccountRef is an account id or name.
	AccountRef string

	// FilePath is the CSV file to ingest.
	FilePath string

	// Columns carries optional per-field column-name overrides.
	Columns csvfile.Overrides

	// Delimiter optionally overrides delimiter auto-detection.
	// Must be a single character when set.
	Delimiter string

	// DateFormat selects how ambiguous date literals are read.
	DateFormat dates.Format

	// InvertSign negates every parsed amount (for exports that report
	// debits as positive numbers).
	InvertSign bool
}

// Result summarizes one completed ingest run.
type Result struct {
	RunID     string `json:"runId"`
	AccountID string `json:"accountId"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
}

// Ingestor composes the parsing, normalization and persistence pieces into
// one ingest operation. It exclusively owns IngestRun and Transaction rows
// for its invocations.
type Ingestor struct {
	store     ledger.Store
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates an Ingestor. publisher may be nil to disable eventing.
func New(store ledger.Store, publisher events.Publisher, logger *slog.Logger) *Ingestor {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, publisher: publisher, logger: logger}
}

// IngestCSV runs the pipeline end to end.
//
// The run placeholder is committed before any file read, so a crash during
// row processing leaves a diagnosable failed run. The row-insertion phase is
// one atomic batch: any row-level error rolls every insert back and
// finalizes the run as failed. Duplicate (account, hash) rows are counted
// as skipped, never treated as errors.
func (i *Ingestor) IngestCSV(ctx context.Context, opts Options) (*Result, error) {
	delimiter, err := parseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	// Failures before the placeholder exists are not recorded as a run.
	account, err := i.store.ResolveAccount(ctx, opts.AccountRef)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(opts.FilePath)
	if err != nil {
		absPath = opts.FilePath
	}

	run := &ledger.IngestRun{
		ID:         uuid.NewString(),
		AccountID:  account.ID,
		SourceType: "csv",
		SourceMeta: ledger.SourceMeta{
			File:       absPath,
			Delimiter:  delimiterMeta(opts.Delimiter),
			DateFormat: opts.DateFormat.String(),
			InvertSign: opts.InvertSign,
		},
		StartedAt: time.Now().UTC(),
		Status:    ledger.RunFailed,
	}
	if err := i.store.StartRun(ctx, run); err != nil {
		return nil, err
	}

	logger := i.logger.With("run_id", run.ID, "account", account.Name, "file", absPath)
	logger.Info("ingest run started")

	result, err := i.processFile(ctx, account, run.ID, absPath, delimiter, opts)
	if err != nil {
		if ferr := i.store.FinalizeRunFailure(ctx, run.ID, err.Error()); ferr != nil {
			logger.Error("failed to finalize failed run", "error", ferr)
		}
		logger.Warn("ingest run failed", "error", err)
		return nil, &ledger.Error{
			Kind:    ledger.KindOf(err),
			Message: fmt.Sprintf("CSV ingest failed (run %s)", run.ID),
			Cause:   err,
		}
	}

	if err := i.store.FinalizeRunSuccess(ctx, run.ID); err != nil {
		logger.Error("failed to finalize successful run", "error", err)
		return nil, &ledger.Error{
			Kind:    ledger.KindOf(err),
			Message: fmt.Sprintf("CSV ingest failed (run %s)", run.ID),
			Cause:   err,
		}
	}
	logger.Info("ingest run succeeded", "inserted", result.Inserted, "skipped", result.Skipped)

	// Best-effort: a broker outage must not fail a committed run.
	if err := i.publisher.Publish(ctx, events.IngestCompleted{
		RunID:      run.ID,
		AccountID:  account.ID,
		SourceType: run.SourceType,
		Inserted:   result.Inserted,
		Skipped:    result.Skipped,
		EndedAt:    time.Now().UTC(),
	}); err != nil {
		logger.Warn("failed to publish ingest event", "error", err)
	}

	return result, nil
}

// processFile covers steps 3-6: read, map, and atomically insert.
func (i *Ingestor) processFile(ctx context.Context, account *ledger.Account, runID, path string, delimiter rune, opts Options) (*Result, error) {
	file, err := csvfile.Read(path, delimiter)
	if err != nil {
		return nil, err
	}

	mapping, err := csvfile.ResolveMapping(file.Headers, opts.Columns)
	if err != nil {
		return nil, err
	}

	batch, err := i.store.BeginBatch(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	defer batch.Rollback(ctx)

	result := &Result{RunID: runID, AccountID: account.ID}
	now := time.Now().UTC()

	for _, row := range file.Rows {
		rawDate := csvfile.Cell(row, mapping.Date)
		rawAmount := csvfile.Cell(row, mapping.Amount)
		rawDesc := csvfile.Cell(row, mapping.Description)

		// Rows with nothing in any mapped required cell are filler
		// (subtotals, footers); drop them without counting.
		if rawDate == "" && rawAmount == "" && rawDesc == "" {
			continue
		}

		postedAt, err := dates.ParseToISO(rawDate, opts.DateFormat)
		if err != nil {
			return nil, err
		}

		amount, err := money.ParseMinorUnits(rawAmount)
		if err != nil {
			return nil, err
		}
		if opts.InvertSign {
			amount = -amount
		}

		currency := ""
		if mapping.Currency >= 0 {
			currency = csvfile.Cell(row, mapping.Currency)
		}
		if currency == "" {
			currency = account.Currency
		}
		if currency == "" {
			return nil, ledger.E(ledger.KindValidation,
				"missing currency (provide a currency column or set the account's default currency)")
		}

		if rawDesc == "" {
			return nil, ledger.E(ledger.KindValidation, "missing description value")
		}

		merchant := normalize.Merchant(rawDesc)
		hash := Fingerprint(postedAt, amount, currency, normalize.ForHash(rawDesc), account.ID)

		var externalID *string
		if mapping.ExternalID >= 0 {
			if v := csvfile.Cell(row, mapping.ExternalID); v != "" {
				externalID = &v
			}
		}

		inserted, err := batch.InsertTransaction(ctx, &ledger.Transaction{
			ID:                 uuid.NewString(),
			AccountID:          account.ID,
			PostedAt:           postedAt,
			Amount:             amount,
			Currency:           currency,
			RawDescription:     rawDesc,
			NormalizedMerchant: merchant,
			CategorySource:     "none",
			ExternalID:         externalID,
			Hash:               hash,
			CreatedAt:          now,
		})
		if err != nil {
			return nil, err
		}

		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// parseDelimiter validates the optional delimiter override.
func parseDelimiter(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, ledger.E(ledger.KindValidation, "delimiter must be a single character, got '%s'", s)
	}
	return r, nil
}

// delimiterMeta preserves the delimiter override verbatim for the audit
// record; nil means auto-detection was used.
func delimiterMeta(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
