package implementations

import (
	"context"
	"fmt"
	"sort"

	"github.com/api-sage/multicurrency-account/src/internal/adapter/repository/codec"
	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

var _ domain.AccountRepository = (*AccountRepository)(nil)

// AccountRepository rebuilds accounts from an EventStore. It works with any
// store implementation.
type AccountRepository struct {
	store domain.EventStore
	clock domain.Clock
}

func NewAccountRepository(store domain.EventStore, clock domain.Clock) *AccountRepository {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &AccountRepository{store: store, clock: clock}
}

func (r *AccountRepository) Load(ctx context.Context, id string) (*domain.Account, error) {
	records, err := r.store.ReadAll(ctx, id)
	if err != nil {
		logger.Error("account repository read events failed", err, logger.Fields{
			"accountId": id,
		})
		return nil, fmt.Errorf("read events of account: %w", err)
	}

	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		if !codec.Supports(record.Type) {
			logger.Error("account repository unknown event type", domain.ErrUnknownEvent, logger.Fields{
				"accountId": id,
				"eventId":   record.ID,
				"eventType": record.Type,
			})
			return nil, fmt.Errorf("event %s: %w: %q", record.ID, domain.ErrUnknownEvent, record.Type)
		}
		if err := codec.Verify(record.Payload, record.Checksum); err != nil {
			logger.Error("account repository checksum mismatch", err, logger.Fields{
				"accountId": id,
				"eventId":   record.ID,
			})
			return nil, fmt.Errorf("event %s: %w", record.ID, err)
		}

		event, err := codec.Decode(record.Payload)
		if err != nil {
			logger.Error("account repository decode event failed", err, logger.Fields{
				"accountId": id,
				"eventId":   record.ID,
			})
			return nil, fmt.Errorf("event %s: %w: %v", record.ID, domain.ErrCorruptedEvent, err)
		}
		if event.Type() != record.Type {
			return nil, fmt.Errorf("event %s: %w: stored as %s but payload is %s", record.ID, domain.ErrCorruptedEvent, record.Type, event.Type())
		}
		events = append(events, event)
	}

	// stores give no ordering guarantee; ties keep their read order
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt().Before(events[j].OccurredAt())
	})

	account, err := domain.NewAccount(id, events, r.clock)
	if err != nil {
		return nil, err
	}

	logger.Debug("account repository load success", logger.Fields{
		"accountId": id,
		"events":    len(events),
	})
	return account, nil
}

func (r *AccountRepository) Save(ctx context.Context, id string, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]domain.EventRecord, 0, len(events))
	for _, event := range events {
		payload, err := codec.Encode(event)
		if err != nil {
			return err
		}
		records = append(records, domain.EventRecord{
			AccountID: id,
			Type:      event.Type(),
			Payload:   payload,
			Checksum:  codec.Checksum(payload),
		})
	}

	if err := r.store.Append(ctx, id, records); err != nil {
		logger.Error("account repository append events failed", err, logger.Fields{
			"accountId": id,
			"count":     len(records),
		})
		return fmt.Errorf("append events of account: %w", err)
	}
	return nil
}
