package webview

import (
	"context"
	"sync"
)

type cancelEntry struct {
	cancel context.CancelFunc
}

// CancellationManager maps abort keys to the cancel funcs of in-flight
// requests. One instance is shared by every controller of a host process.
type CancellationManager struct {
	mu      sync.Mutex
	entries map[string]*cancelEntry
}

// NewCancellationManager returns an empty manager.
func NewCancellationManager() *CancellationManager {
	return &CancellationManager{entries: make(map[string]*cancelEntry)}
}

// Track derives a cancellable context for the request identified by key.
// The returned release must be called when the request finishes; it drops
// the mapping and releases the context. An empty key is not tracked.
// Tracking a key that is already in flight cancels the older request.
func (m *CancellationManager) Track(ctx context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	if key == "" {
		return ctx, cancel
	}
	entry := &cancelEntry{cancel: cancel}

	m.mu.Lock()
	if old, ok := m.entries[key]; ok {
		old.cancel()
	}
	m.entries[key] = entry
	m.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			if m.entries[key] == entry {
				delete(m.entries, key)
			}
			m.mu.Unlock()
			cancel()
		})
	}
	return ctx, release
}

// Cancel cancels the request tracked under key and forgets it. It reports
// whether a request was found.
func (m *CancellationManager) Cancel(key string) bool {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok {
		delete(m.entries, key)
	}
	m.mu.Unlock()
	if ok {
		entry.cancel()
	}
	return ok
}

// Len returns the number of tracked requests.
func (m *CancellationManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
