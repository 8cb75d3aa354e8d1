package eventlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kastheco/atlas/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const eventSchema = `
CREATE TABLE IF NOT EXISTS analytics_events (
	id        INTEGER PRIMARY KEY,
	event_id  TEXT    NOT NULL UNIQUE,
	kind      TEXT    NOT NULL,
	timestamp TEXT    NOT NULL,
	screen    TEXT    NOT NULL DEFAULT '',
	site      TEXT    NOT NULL DEFAULT '',
	product   TEXT    NOT NULL DEFAULT '',
	subject   TEXT    NOT NULL DEFAULT '',
	message   TEXT    NOT NULL DEFAULT '',
	detail    TEXT    NOT NULL DEFAULT '',
	level     TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_events_screen_ts ON analytics_events(screen, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_events_kind_ts ON analytics_events(kind, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteLogger is a Logger backed by a SQLite database.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (or creates) a SQLite database at dbPath, runs the
// analytics_events schema, and returns a ready-to-use logger.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteLogger(dbPath string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for event log: %w", err)
	}
	// Screens emit from many goroutines; one connection keeps ":memory:"
	// databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run event log schema: %w", err)
	}

	return &SQLiteLogger{db: db}, nil
}

// Emit inserts an event. Zero Timestamp becomes time.Now() and an empty
// EventID gets a fresh uuid. Failures are logged, never returned.
func (l *SQLiteLogger) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	level := e.Level
	if level == "" {
		level = "info"
	}

	const q = `
		INSERT INTO analytics_events
			(event_id, kind, timestamp, screen, site, product, subject, message, detail, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := l.db.Exec(q,
		e.EventID,
		string(e.Kind),
		formatTime(e.Timestamp),
		e.Screen,
		e.Site,
		e.Product,
		e.Subject,
		e.Message,
		e.Detail,
		level,
	); err != nil {
		log.WarningLog.Printf("event log: insert %s: %v", e.Kind, err)
	}
}

// Query returns events matching the filter, ordered newest-first.
// Limit is capped at 500.
func (l *SQLiteLogger) Query(f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}

	var conditions []string
	var args []any

	if f.Screen != "" {
		conditions = append(conditions, "screen = ?")
		args = append(args, f.Screen)
	}
	if len(f.Kinds) > 0 {
		placeholders := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			placeholders[i] = "?"
			args = append(args, string(k))
		}
		conditions = append(conditions, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if !f.After.IsZero() {
		conditions = append(conditions, "timestamp > ?")
		args = append(args, formatTime(f.After))
	}
	if !f.Before.IsZero() {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, formatTime(f.Before))
	}

	q := `
		SELECT id, event_id, kind, timestamp, screen, site, product,
		       subject, message, detail, level
		FROM analytics_events
	`
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT %d", limit)

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query analytics events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var ts string
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			(*string)(&e.Kind),
			&ts,
			&e.Screen,
			&e.Site,
			&e.Product,
			&e.Subject,
			&e.Message,
			&e.Detail,
			&e.Level,
		); err != nil {
			return nil, fmt.Errorf("scan analytics event: %w", err)
		}
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analytics events: %w", err)
	}
	return events, nil
}

// Close releases the database connection.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

// formatTime formats a time.Time as RFC3339Nano for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime returns zero time on empty or invalid input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
