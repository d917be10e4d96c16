// Package ledger defines the domain types shared by the ingestion pipeline,
// the persistence layer, and the HTTP surface.
package ledger

import "time"

// Account is a ledger account transactions are ingested into. Accounts are
// managed outside the ingestion core; ingestion only resolves and reads them.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency,omitempty"` // default currency, may be empty
	CreatedAt time.Time `json:"createdAt"`
}

// Transaction is one canonicalized ledger row. Amount is in minor currency
// units (cents). Hash is the per-account dedup fingerprint; (AccountID, Hash)
// is unique and a second insert with the same pair is a no-op.
type Transaction struct {
	ID                 string    `json:"id"`
	AccountID          string    `json:"accountId"`
	PostedAt           string    `json:"postedAt"` // canonical YYYY-MM-DD
	Amount             int64     `json:"amount"`
	Currency           string    `json:"currency"`
	RawDescription     string    `json:"rawDescription"`
	NormalizedMerchant string    `json:"normalizedMerchant"`
	Category           *string   `json:"category"`
	CategoryConfidence *float64  `json:"categoryConfidence"`
	CategorySource     string    `json:"categorySource"` // "none" until categorized
	ExternalID         *string   `json:"externalId"`
	Hash               string    `json:"hash"`
	CreatedAt          time.Time `json:"createdAt"`
}

// RunStatus is the lifecycle state of an ingest run.
type RunStatus string

const (
	// RunFailed doubles as the placeholder state: a run is born failed
	// with RunErrIncomplete so a crash mid-ingest is already diagnosable.
	RunFailed  RunStatus = "failed"
	RunSuccess RunStatus = "success"
)

// RunErrIncomplete is the error text of a freshly started run. It is
// replaced by nil on success or by the real message on failure.
const RunErrIncomplete = "incomplete"

// SourceMeta is the audit payload persisted verbatim with each run.
type SourceMeta struct {
	File       string  `json:"file"`
	Delimiter  *string `json:"delimiter"` // nil when auto-detected
	DateFormat string  `json:"dateFormat"`
	InvertSign bool    `json:"invertSign"`
}

// IngestRun is the audit record of one ingestion invocation.
type IngestRun struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"accountId"`
	SourceType string     `json:"sourceType"` // "csv"
	SourceMeta SourceMeta `json:"sourceMeta"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt"`
	Status     RunStatus  `json:"status"`
	Error      *string    `json:"error"`
}
