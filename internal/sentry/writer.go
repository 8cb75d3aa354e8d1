package sentry

import (
	"io"
	"strings"

	gosentry "github.com/getsentry/sentry-go"
)

// Level is the severity a Writer reports at.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) sentryLevel() gosentry.Level {
	switch l {
	case LevelError:
		return gosentry.LevelError
	case LevelWarning:
		return gosentry.LevelWarning
	default:
		return gosentry.LevelInfo
	}
}

// Writer tees log lines to an inner writer and to Sentry. Error lines become
// events, everything else becomes a breadcrumb attached to the next event.
type Writer struct {
	inner    io.Writer
	level    Level
	category string
}

// NewWriter creates a Writer that tees to inner and forwards to Sentry.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level, category: "log"}
}

// WithCategory returns a copy whose breadcrumbs carry the given category.
func (w *Writer) WithCategory(category string) *Writer {
	c := *w
	c.category = category
	return &c
}

func (w *Writer) Write(p []byte) (int, error) {
	// The inner destination always wins; sentry is best effort.
	n, err := w.inner.Write(p)

	if !enabled {
		return n, err
	}

	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return n, err
	}

	if w.level == LevelError {
		gosentry.CaptureMessage(msg)
		return n, err
	}
	gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
		Level:    w.level.sentryLevel(),
		Category: w.category,
		Message:  msg,
	})
	return n, err
}
