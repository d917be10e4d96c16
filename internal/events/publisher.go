// Package events publishes ingest lifecycle events for downstream
// consumers (categorization workers, reporting). Publishing is best-effort:
// a failed publish never fails the ingest run that produced it.
package events

import (
	"context"
	"time"
)

// IngestCompleted is emitted after an ingest run reaches its successful
// terminal state.
type IngestCompleted struct {
	RunID      string    `json:"run_id"`
	AccountID  string    `json:"account_id"`
	SourceType string    `json:"source_type"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	EndedAt    time.Time `json:"ended_at"`
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event any) error
	Close() error
}

// NoopPublisher discards every event. Used when eventing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event any) error { return nil }

func (NoopPublisher) Close() error { return nil }
