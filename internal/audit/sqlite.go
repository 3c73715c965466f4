package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"goa.design/clue/log"
	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_id   TEXT    NOT NULL,
	event_type  TEXT    NOT NULL,
	message     TEXT    NOT NULL,
	details     TEXT    NOT NULL,
	recorded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_events_entity ON audit_events (entity_id, recorded_at);
`

// SQLiteRecorder archives events in a local SQLite database
type SQLiteRecorder struct {
	db    *sql.DB
	clock clock.Clock
}

// OpenSQLite opens (creating if needed) the archive at path
func OpenSQLite(path string, clk clock.Clock) (*SQLiteRecorder, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("audit database path is required")
	}
	if clk == nil {
		clk = clock.New()
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &SQLiteRecorder{db: db, clock: clk}, nil
}

// Close closes the database handle
func (s *SQLiteRecorder) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts the event
func (s *SQLiteRecorder) Record(ctx context.Context, entityID, eventType, message string, details map[string]any) {
	encoded := []byte("{}")
	if len(details) > 0 {
		data, err := json.Marshal(details)
		if err != nil {
			log.Error(ctx, err, log.KV{K: "msg", V: "failed to encode audit details"}, log.KV{K: "event", V: eventType})
			return
		}
		encoded = data
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (entity_id, event_type, message, details, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		entityID, eventType, message, string(encoded), s.clock.Now().UTC().UnixMilli())
	if err != nil {
		log.Error(ctx, err,
			log.KV{K: "msg", V: "failed to archive audit event"},
			log.KV{K: "event", V: eventType},
			log.KV{K: "entity_id", V: entityID})
	}
}

// List returns up to limit of the entity's most recent events, newest first
func (s *SQLiteRecorder) List(ctx context.Context, entityID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id, event_type, message, details, recorded_at FROM audit_events
		 WHERE entity_id = ? ORDER BY recorded_at DESC, id DESC LIMIT ?`,
		entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e       Event
			details string
			millis  int64
		)
		if err := rows.Scan(&e.EntityID, &e.Type, &e.Message, &details, &millis); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if details != "{}" {
			if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		e.RecordedAt = time.UnixMilli(millis).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
