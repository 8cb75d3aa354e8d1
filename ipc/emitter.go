package ipc

import "sync"

type listener struct {
	id uint64
	fn func(Message)
}

// Emitter fans inbound messages out to registered listeners in registration
// order. Listeners are invoked outside the lock, so a listener may register
// or unsubscribe others, including itself.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []listener
}

// Listen registers fn and returns a func that removes it. The returned func
// is idempotent.
func (e *Emitter) Listen(fn func(Message)) (unsubscribe func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

// Emit delivers m to a snapshot of the current listeners.
func (e *Emitter) Emit(m Message) {
	e.mu.Lock()
	snapshot := make([]listener, len(e.listeners))
	copy(snapshot, e.listeners)
	e.mu.Unlock()

	for _, l := range snapshot {
		l.fn(m)
	}
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}
