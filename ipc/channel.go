package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kastheco/atlas/log"
)

// Channel is the UI end of the protocol: it posts actions and turns the
// inbound message stream into events and awaitable replies.
type Channel struct {
	transport Transport
	messages  *MessageRegistry
	events    Emitter
}

// NewChannel wraps t. Inbound payloads are decoded with messages.
func NewChannel(t Transport, messages *MessageRegistry) *Channel {
	return &Channel{transport: t, messages: messages}
}

// Post sends a without waiting for any reply.
func (c *Channel) Post(a Action) error {
	data, err := EncodeAction(a)
	if err != nil {
		return err
	}
	if err := c.transport.Send(data); err != nil {
		return fmt.Errorf("post %q: %w", a.ActionType(), err)
	}
	return nil
}

// Listen registers fn for every inbound message.
func (c *Channel) Listen(fn func(Message)) (unsubscribe func()) {
	return c.events.Listen(fn)
}

// Listeners returns how many listeners are registered, pending awaits included.
func (c *Channel) Listeners() int {
	return c.events.Len()
}

// Dispatch feeds m to the listeners as if it had arrived on the transport.
func (c *Channel) Dispatch(m Message) {
	c.events.Emit(m)
}

// Run pumps the transport into the listeners until ctx is done or the
// transport is closed. Payloads that fail to decode are logged and skipped.
func (c *Channel) Run(ctx context.Context) error {
	for {
		data, err := c.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		m, err := c.messages.Decode(data)
		if err != nil {
			log.WarningLog.Printf("dropping inbound message: %v", err)
			continue
		}
		c.events.Emit(m)
	}
}

type awaitResult struct {
	msg Message
	err error
}

// PostAndAwait posts a and waits for the first inbound message of type
// expected. When nonce is non-empty the reply must carry the same nonce, and
// an error message carrying that nonce fails the wait with *RemoteError.
// Without a nonce, concurrent waits on the same type race for the first reply.
func (c *Channel) PostAndAwait(ctx context.Context, a Action, expected MessageType, timeout time.Duration, nonce string) (Message, error) {
	result := make(chan awaitResult, 1)
	deliver := func(r awaitResult) {
		select {
		case result <- r:
		default:
		}
	}

	unsubscribe := c.events.Listen(func(m Message) {
		if m.MessageType() == expected && (nonce == "" || NonceOf(m) == nonce) {
			deliver(awaitResult{msg: m})
			return
		}
		if em, ok := m.(ErrorMessage); ok && nonce != "" && em.Nonce == nonce {
			deliver(awaitResult{err: &RemoteError{Reason: em.Reason, Nonce: em.Nonce}})
		}
	})
	defer unsubscribe()

	if err := c.Post(a); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-result:
		return r.msg, r.err
	case <-timer.C:
		return nil, fmt.Errorf("%w: %q after %s", ErrTimeout, expected, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await is PostAndAwait with the reply type taken from T.
func Await[T Message](ctx context.Context, c *Channel, a Action, timeout time.Duration, nonce string) (T, error) {
	var zero T
	m, err := c.PostAndAwait(ctx, a, zero.MessageType(), timeout, nonce)
	if err != nil {
		return zero, err
	}
	t, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("ipc: reply %q decoded as %T, want %T", m.MessageType(), m, zero)
	}
	return t, nil
}
