package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

var _ domain.EventStore = (*EventStore)(nil)

// EventStore keeps event records in process memory. It backs tests and
// single-process demos.
type EventStore struct {
	mu      sync.RWMutex
	records map[string][]domain.EventRecord
	now     func() time.Time
}

func NewEventStore() *EventStore {
	return &EventStore{
		records: make(map[string][]domain.EventRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventStore) Append(ctx context.Context, accountID string, records []domain.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	stored := make([]domain.EventRecord, 0, len(records))
	recordedAt := s.now()
	for _, record := range records {
		record.AccountID = accountID
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if record.RecordedAt.IsZero() {
			record.RecordedAt = recordedAt
		}
		record.Payload = append([]byte(nil), record.Payload...)
		stored = append(stored, record)
	}

	s.mu.Lock()
	s.records[accountID] = append(s.records[accountID], stored...)
	s.mu.Unlock()
	return nil
}

func (s *EventStore) ReadAll(ctx context.Context, accountID string) ([]domain.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.records[accountID]
	out := make([]domain.EventRecord, 0, len(records))
	for _, record := range records {
		record.Payload = append([]byte(nil), record.Payload...)
		out = append(out, record)
	}
	return out, nil
}
