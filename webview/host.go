package webview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"

	"github.com/kastheco/atlas/internal/sentry"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
)

// TransportPoster encodes messages onto an ipc.Transport.
type TransportPoster struct {
	mu sync.Mutex
	t  ipc.Transport
}

// NewTransportPoster posts onto t.
func NewTransportPoster(t ipc.Transport) *TransportPoster {
	return &TransportPoster{t: t}
}

// PostMessage encodes m and sends it. Safe for concurrent use.
func (p *TransportPoster) PostMessage(m ipc.Message) error {
	data, err := ipc.EncodeMessage(m)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.t.Send(data); err != nil {
		return fmt.Errorf("post %q: %w", m.MessageType(), err)
	}
	return nil
}

// Host pumps inbound actions from a transport into a controller.
type Host struct {
	transport  ipc.Transport
	poster     MessagePoster
	actions    *ipc.ActionRegistry
	controller Controller
}

// NewHost wires controller to t. Inbound payloads are decoded with actions;
// controller posts through poster, which usually wraps t.
func NewHost(t ipc.Transport, poster MessagePoster, actions *ipc.ActionRegistry, controller Controller) *Host {
	return &Host{transport: t, poster: poster, actions: actions, controller: controller}
}

// Run dispatches each inbound action on its own goroutine until the
// transport closes or ctx is done, then waits for in-flight handlers.
func (h *Host) Run(ctx context.Context) error {
	details := h.controller.ScreenDetails()
	sentry.SetContext(string(details.ID), details.SiteKey(), string(details.Product))

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		data, err := h.transport.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ipc.ErrClosed) {
				return nil
			}
			return err
		}
		a, err := h.actions.Decode(data)
		if err != nil {
			log.WarningLog.Printf("%s: dropping inbound action: %v", details.ID, err)
			h.postError(err, "Invalid action", "")
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.dispatch(ctx, a)
		}()
	}
}

func (h *Host) dispatch(ctx context.Context, a ipc.Action) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CapturePanic(r)
			log.ErrorLog.Printf("panic handling %q: %v\n%s", a.ActionType(), r, debug.Stack())
			h.postError(fmt.Errorf("%v", r), fmt.Sprintf("Error handling %s", a.ActionType()), ipc.NonceOf(a))
		}
	}()
	h.controller.OnMessageReceived(ctx, a)
}

func (h *Host) postError(err error, title, nonce string) {
	if perr := h.poster.PostMessage(ipc.ErrorMessage{Reason: ipc.FormatError(err, title), Nonce: nonce}); perr != nil {
		log.ErrorLog.Printf("could not post error: %v", perr)
	}
}
