package webview

import (
	"os"
	"sync"
	"testing"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
)

func TestMain(m *testing.M) {
	log.Initialize(false)
	code := m.Run()
	log.Close()
	os.Exit(code)
}

// recorder is a MessagePoster that keeps everything posted.
type recorder struct {
	mu   sync.Mutex
	msgs []ipc.Message
}

func (r *recorder) PostMessage(m ipc.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	return nil
}

func (r *recorder) all() []ipc.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ipc.Message(nil), r.msgs...)
}

func (r *recorder) types() []ipc.MessageType {
	var out []ipc.MessageType
	for _, m := range r.all() {
		out = append(out, m.MessageType())
	}
	return out
}

// posted returns every posted message of type T, in order.
func posted[T ipc.Message](r *recorder) []T {
	var out []T
	for _, m := range r.all() {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// eventSink is an in-memory eventlog.Logger.
type eventSink struct {
	mu     sync.Mutex
	events []eventlog.Event
}

func (s *eventSink) Emit(e eventlog.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) Query(eventlog.QueryFilter) ([]eventlog.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]eventlog.Event(nil), s.events...), nil
}

func (s *eventSink) Close() error { return nil }

func (s *eventSink) kinds() []eventlog.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []eventlog.EventKind
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeOpener struct {
	mu     sync.Mutex
	opened []string
	err    error
}

func (o *fakeOpener) OpenURL(u string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, u)
	return o.err
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return c.err
}

// testCommon is a CommonHandler that never touches the desktop.
func testCommon(events *eventSink) *CommonHandler {
	deps := CommonDeps{Opener: &fakeOpener{}, Clipboard: &fakeClipboard{}}
	if events != nil {
		deps.Events = events
	}
	return NewCommonHandler(deps)
}
