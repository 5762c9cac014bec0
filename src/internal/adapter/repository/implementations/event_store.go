package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

var _ domain.EventStore = (*EventStore)(nil)

// EventStore persists event records in the account_events table.
type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) Append(ctx context.Context, accountID string, records []domain.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	logger.Info("event store append", logger.Fields{
		"accountId": accountID,
		"count":     len(records),
	})

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("event store begin transaction failed", err, logger.Fields{
			"accountId": accountID,
		})
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO account_events (
	id,
	account_id,
	event_type,
	payload,
	checksum,
	recorded_at
) VALUES ($1, $2, $3, $4, $5, $6)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare append statement: %w", err)
	}
	defer stmt.Close()

	recordedAt := time.Now().UTC()
	for _, record := range records {
		id := record.ID
		if id == "" {
			id = uuid.NewString()
		}
		at := record.RecordedAt
		if at.IsZero() {
			at = recordedAt
		}

		if _, err := stmt.ExecContext(ctx, id, accountID, string(record.Type), string(record.Payload), record.Checksum, at); err != nil {
			logger.Error("event store append failed", err, logger.Fields{
				"accountId": accountID,
				"eventType": record.Type,
			})
			return fmt.Errorf("append %s event: %w", record.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("event store commit failed", err, logger.Fields{
			"accountId": accountID,
		})
		return fmt.Errorf("commit append transaction: %w", err)
	}

	logger.Info("event store append success", logger.Fields{
		"accountId": accountID,
		"count":     len(records),
	})
	return nil
}

func (s *EventStore) ReadAll(ctx context.Context, accountID string) ([]domain.EventRecord, error) {
	logger.Info("event store read all", logger.Fields{
		"accountId": accountID,
	})

	const query = `
SELECT id, account_id, event_type, payload, checksum, recorded_at
FROM account_events
WHERE account_id = $1
ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		logger.Error("event store read all failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, fmt.Errorf("read account events: %w", err)
	}
	defer rows.Close()

	records, err := scanEventRecords(rows)
	if err != nil {
		logger.Error("event store scan failed", err, logger.Fields{
			"accountId": accountID,
		})
		return nil, err
	}

	logger.Info("event store read all success", logger.Fields{
		"accountId": accountID,
		"count":     len(records),
	})
	return records, nil
}

func scanEventRecords(rows *sql.Rows) ([]domain.EventRecord, error) {
	records := make([]domain.EventRecord, 0)
	for rows.Next() {
		var (
			record    domain.EventRecord
			eventType string
			payload   string
		)
		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&eventType,
			&payload,
			&record.Checksum,
			&record.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account event: %w", err)
		}
		record.Type = domain.EventType(eventType)
		record.Payload = []byte(payload)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account events: %w", err)
	}
	return records, nil
}
