package domain

import (
	"context"
	"time"
)

// EventRecord is the persisted envelope of one event. Payload is opaque to
// the store and carries its own type discriminator; Type mirrors it so stores
// can index on it.
type EventRecord struct {
	ID         string
	AccountID  string
	Type       EventType
	Payload    []byte
	Checksum   string
	RecordedAt time.Time
}

// EventStore is an append-only log keyed by account id.
//
// Append persists records atomically and in the given order, assigning an ID
// to every record that has none. It never reorders or deduplicates.
// ReadAll returns every record appended for the account. Callers must sort
// by event timestamp before replay; a store that returns records in append
// order makes that sort deterministic for equal timestamps.
//
// Two sessions appending to the same account concurrently are not detected;
// writers must be serialised per account id (see AccountLocker).
type EventStore interface {
	Append(ctx context.Context, accountID string, records []EventRecord) error
	ReadAll(ctx context.Context, accountID string) ([]EventRecord, error)
}
