// Package webui is the UI end of the webview protocol. A Client routes the
// host's messages: errors go to the shared banner, PMF status to the survey
// banner, and everything else to the screen's store. Each screen has a
// reducer folding messages into render state and a typed client for its
// request/response actions.
package webui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
)

// DefaultTimeout bounds how long a request waits for its reply.
const DefaultTimeout = 30 * time.Second

// Handler receives the messages the Client does not intercept.
type Handler interface {
	HandleMessage(m ipc.Message)
}

// HandlerFunc adapts a func to Handler.
type HandlerFunc func(ipc.Message)

func (f HandlerFunc) HandleMessage(m ipc.Message) { f(m) }

// Client is one mounted screen.
type Client struct {
	ch      *ipc.Channel
	handler Handler
	timeout time.Duration

	banner *ErrorBanner
	pmf    *PMFController

	mount       sync.Once
	mountErr    error
	unsubscribe func()
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient starts routing ch's messages. handler may be nil.
func NewClient(ch *ipc.Channel, handler Handler, opts ...Option) *Client {
	c := &Client{ch: ch, handler: handler, timeout: DefaultTimeout, banner: &ErrorBanner{}}
	c.pmf = &PMFController{post: c.Post}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = ch.Listen(c.route)
	return c
}

func (c *Client) route(m ipc.Message) {
	switch m := m.(type) {
	case ipc.ErrorMessage:
		c.banner.Show(m.Reason)
	case ipc.PMFStatus:
		c.pmf.setVisible(m.ShowPMF)
	default:
		if c.handler != nil {
			c.handler.HandleMessage(m)
		}
	}
}

// Mount asks the host for the screen's initial state. Only the first call
// posts; later calls return the first call's result.
func (c *Client) Mount() error {
	c.mount.Do(func() {
		c.mountErr = c.ch.Post(ipc.Refresh{})
	})
	return c.mountErr
}

// Refresh asks the host to reload the screen.
func (c *Client) Refresh() error {
	return c.ch.Post(ipc.Refresh{})
}

// Close stops routing messages.
func (c *Client) Close() {
	c.unsubscribe()
}

// Banner returns the shared error banner.
func (c *Client) Banner() *ErrorBanner { return c.banner }

// PMF returns the survey banner controller.
func (c *Client) PMF() *PMFController { return c.pmf }

// Post sends a without waiting for a reply.
func (c *Client) Post(a ipc.Action) error {
	return c.ch.Post(a)
}

func (c *Client) ExternalLink(source, linkID string) error {
	return c.Post(ipc.ExternalLink{Source: source, LinkID: linkID})
}

func (c *Client) OpenURL(source, url string) error {
	return c.Post(ipc.ExternalLink{Source: source, URL: url})
}

func (c *Client) CopyLink(linkType, url string) error {
	return c.Post(ipc.CopyLink{LinkType: linkType, URL: url})
}

func (c *Client) OpenJiraIssue(issueOrKey string) error {
	return c.Post(ipc.OpenJiraIssue{IssueOrKey: issueOrKey})
}

func (c *Client) SubmitFeedback(f ipc.FeedbackData) error {
	return c.Post(ipc.SubmitFeedback{Feedback: f})
}

// ReportError sends an error the UI hit on its own side to analytics.
func (c *Client) ReportError(err error) error {
	return c.Post(ipc.SendAnalytics{ErrorInfo: ipc.ErrorInfo{Name: "Error", Message: err.Error()}})
}

func (c *Client) markLoading() {
	if d, ok := c.handler.(Dispatcher); ok {
		d.Dispatch(MarkLoading{})
	}
}

// requestFailed ends the loading state of a failed request. The error
// itself reaches the user through the banner, never the screen reducer.
func (c *Client) requestFailed(err error) {
	log.WarningLog.Printf("request failed: %v", err)
	if d, ok := c.handler.(Dispatcher); ok {
		d.Dispatch(RequestFailed{})
	}
}

// request posts the action build returns for a fresh nonce and waits for
// the reply of type T carrying that nonce.
func request[T ipc.Message](ctx context.Context, c *Client, build func(nonce string) ipc.Action) (T, error) {
	nonce := uuid.NewString()
	c.markLoading()
	reply, err := ipc.Await[T](ctx, c.ch, build(nonce), c.timeout, nonce)
	if err != nil {
		c.requestFailed(err)
	}
	return reply, err
}

// cancellable is request for actions carrying an abort key. When ctx ends
// before the reply arrives the host is told to cancel the work.
func cancellable[T ipc.Message](ctx context.Context, c *Client, build func(nonce, abortKey string) ipc.Action) (T, error) {
	nonce, key := uuid.NewString(), uuid.NewString()
	stop := context.AfterFunc(ctx, func() {
		if err := c.ch.Post(ipc.CancelRequest{AbortKey: key}); err != nil {
			log.WarningLog.Printf("could not cancel request %s: %v", key, err)
		}
	})
	defer stop()
	reply, err := ipc.Await[T](ctx, c.ch, build(nonce, key), c.timeout, nonce)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.requestFailed(err)
	}
	return reply, err
}
