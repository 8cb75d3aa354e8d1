package ipc

import (
	"context"
	"errors"
	"io"
	"sync"
)

// ErrClosed is returned by Send on a closed transport.
var ErrClosed = errors.New("ipc: transport closed")

// Transport moves opaque JSON payloads in both directions. Send must be safe
// for concurrent use; Receive is called from a single reader loop.
type Transport interface {
	Send(data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// queue is an unbounded FIFO of payloads.
type queue struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(data []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	q.items = append(q.items, buf)
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue) pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			data := q.items[0]
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				q.signal()
			}
			return data, nil
		}
		if q.closed {
			q.mu.Unlock()
			return nil, io.EOF
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

type pipeEnd struct {
	in, out *queue
}

func (p *pipeEnd) Send(data []byte) error                      { return p.out.push(data) }
func (p *pipeEnd) Receive(ctx context.Context) ([]byte, error) { return p.in.pop(ctx) }

// Close stops both directions. Pending payloads can still be received.
func (p *pipeEnd) Close() error {
	p.in.close()
	p.out.close()
	return nil
}

// Pipe returns two connected in-memory transports. Each direction is FIFO
// and never blocks the sender.
func Pipe() (ui, host Transport) {
	toHost, toUI := newQueue(), newQueue()
	return &pipeEnd{in: toUI, out: toHost}, &pipeEnd{in: toHost, out: toUI}
}
