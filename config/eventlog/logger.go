// Package eventlog records analytics events emitted by the webview screens
// and lets the CLI query them back.
package eventlog

import "time"

// QueryFilter specifies criteria for querying events.
type QueryFilter struct {
	Screen string
	Kinds  []EventKind
	Limit  int
	Before time.Time
	After  time.Time
}

// Logger is the interface for emitting and querying analytics events.
type Logger interface {
	Emit(event Event)
	Query(filter QueryFilter) ([]Event, error)
	Close() error
}

// EventOption is a functional option for configuring optional Event fields.
type EventOption func(*Event)

// WithScreen sets the Screen field on the event.
func WithScreen(screen string) EventOption {
	return func(e *Event) { e.Screen = screen }
}

// WithSite sets the Site and Product fields on the event.
func WithSite(site, product string) EventOption {
	return func(e *Event) {
		e.Site = site
		e.Product = product
	}
}

// WithSubject sets the Subject field on the event.
func WithSubject(subject string) EventOption {
	return func(e *Event) { e.Subject = subject }
}

// WithDetail sets the Detail field on the event (JSON-encoded extra data).
func WithDetail(detail string) EventOption {
	return func(e *Event) { e.Detail = detail }
}

// WithLevel sets the Level field on the event (info, warn, error).
func WithLevel(level string) EventOption {
	return func(e *Event) { e.Level = level }
}

// NewEvent builds an event of kind with message and the given options applied.
func NewEvent(kind EventKind, message string, opts ...EventOption) Event {
	e := Event{Kind: kind, Message: message}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// nopLogger is a no-op Logger used when no database is configured.
type nopLogger struct{}

// NopLogger returns a Logger that discards all events.
func NopLogger() Logger {
	return &nopLogger{}
}

func (n *nopLogger) Emit(_ Event) {}

func (n *nopLogger) Query(_ QueryFilter) ([]Event, error) {
	return nil, nil
}

func (n *nopLogger) Close() error {
	return nil
}
