// Package sqlite stores account events in a single SQLite file using the
// pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
	"github.com/api-sage/multicurrency-account/src/internal/logger"
)

var _ domain.EventStore = (*EventStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS account_events (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	payload     TEXT NOT NULL,
	checksum    TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_account_events_account_id ON account_events (account_id);`

type EventStore struct {
	db *sql.DB
}

// Open creates the database file and schema when missing.
func Open(ctx context.Context, path string) (*EventStore, error) {
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve sqlite path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		path = absPath
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &EventStore{db: db}, nil
}

func (s *EventStore) Close() error {
	return s.db.Close()
}

func (s *EventStore) Append(ctx context.Context, accountID string, records []domain.EventRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
INSERT INTO account_events (id, account_id, event_type, payload, checksum, recorded_at)
VALUES (?, ?, ?, ?, ?, ?)`

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

		if _, err := tx.ExecContext(ctx, query, id, accountID, string(record.Type), string(record.Payload), record.Checksum, at.UTC().Format(time.RFC3339Nano)); err != nil {
			logger.Error("sqlite event store append failed", err, logger.Fields{
				"accountId": accountID,
				"eventType": record.Type,
			})
			return fmt.Errorf("append %s event: %w", record.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}
	return nil
}

func (s *EventStore) ReadAll(ctx context.Context, accountID string) ([]domain.EventRecord, error) {
	const query = `
SELECT id, account_id, event_type, payload, checksum, recorded_at
FROM account_events
WHERE account_id = ?
ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("read account events: %w", err)
	}
	defer rows.Close()

	records := make([]domain.EventRecord, 0)
	for rows.Next() {
		var (
			record                       domain.EventRecord
			eventType, payload, recorded string
		)
		if err := rows.Scan(&record.ID, &record.AccountID, &eventType, &payload, &record.Checksum, &recorded); err != nil {
			return nil, fmt.Errorf("scan account event: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, recorded)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at of event %s: %w", record.ID, err)
		}
		record.Type = domain.EventType(eventType)
		record.Payload = []byte(payload)
		record.RecordedAt = at
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account events: %w", err)
	}

	return records, nil
}
