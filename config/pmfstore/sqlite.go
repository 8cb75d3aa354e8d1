package pmfstore

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kastheco/atlas/config/pmffsm"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS pmf_state (
	profile     TEXT    PRIMARY KEY,
	status      TEXT    NOT NULL DEFAULT 'eligible',
	updated_at  TEXT    NOT NULL DEFAULT '',
	shown_count INTEGER NOT NULL DEFAULT 0
);
`

const defaultProfile = "default"

// SQLiteTracker is a Tracker backed by a SQLite database.
type SQLiteTracker struct {
	db      *sql.DB
	profile string
	snooze  time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// Option configures a SQLiteTracker.
type Option func(*SQLiteTracker)

// WithProfile scopes the tracker to one user profile.
func WithProfile(profile string) Option {
	return func(t *SQLiteTracker) { t.profile = profile }
}

// WithSnooze overrides DefaultSnooze.
func WithSnooze(d time.Duration) Option {
	return func(t *SQLiteTracker) { t.snooze = d }
}

// WithClock overrides time.Now for recorded timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *SQLiteTracker) { t.now = now }
}

// NewSQLiteTracker opens (or creates) a SQLite database at dbPath and runs
// the schema. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteTracker(dbPath string, opts ...Option) (*SQLiteTracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run pmf schema: %w", err)
	}

	t := &SQLiteTracker{db: db, profile: defaultProfile, snooze: DefaultSnooze, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Get returns the stored record, or an eligible record if none exists.
func (t *SQLiteTracker) Get() (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.get()
}

func (t *SQLiteTracker) get() (Record, error) {
	const q = `SELECT status, updated_at, shown_count FROM pmf_state WHERE profile = ?`
	var rec Record
	var status, updated string
	err := t.db.QueryRow(q, t.profile).Scan(&status, &updated, &rec.ShownCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{Status: pmffsm.StatusEligible}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("get pmf state: %w", err)
	}
	rec.Status = pmffsm.Status(status)
	rec.UpdatedAt = parseTime(updated)
	return rec, nil
}

// Apply runs event through the lifecycle and persists the result.
func (t *SQLiteTracker) Apply(event pmffsm.Event) (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, err := t.get()
	if err != nil {
		return Record{}, err
	}
	next, err := pmffsm.ApplyTransition(cur.Status, event)
	if err != nil {
		return cur, err
	}

	rec := Record{Status: next, UpdatedAt: t.now().UTC(), ShownCount: cur.ShownCount}
	switch event {
	case pmffsm.ShowBanner:
		rec.ShownCount++
	case pmffsm.Reset:
		rec.ShownCount = 0
	}

	const q = `
		INSERT INTO pmf_state (profile, status, updated_at, shown_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at,
			shown_count = excluded.shown_count
	`
	if _, err := t.db.Exec(q, t.profile, string(rec.Status), formatTime(rec.UpdatedAt), rec.ShownCount); err != nil {
		return cur, fmt.Errorf("save pmf state: %w", err)
	}
	return rec, nil
}

// ShouldShow reports whether the banner is due at now.
func (t *SQLiteTracker) ShouldShow(now time.Time) (bool, error) {
	rec, err := t.Get()
	if err != nil {
		return false, err
	}
	return pmffsm.ShouldShow(rec.Status, rec.UpdatedAt, now, t.snooze), nil
}

// Close releases the database connection.
func (t *SQLiteTracker) Close() error {
	return t.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

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
