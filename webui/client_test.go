package webui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/bbissue"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/model"
)

type handled struct {
	mu   sync.Mutex
	msgs []ipc.Message
}

func (h *handled) HandleMessage(m ipc.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, m)
}

func (h *handled) all() []ipc.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ipc.Message(nil), h.msgs...)
}

func TestClient_MountPostsRefreshOnce(t *testing.T) {
	c, host := newTestClient(t, bbissue.Actions(), bbissue.Messages(), nil, nil)

	require.NoError(t, c.Mount())
	require.NoError(t, c.Mount())
	require.NoError(t, c.Refresh())

	assert.Equal(t, ipc.Refresh{}, <-host.seen)
	assert.Equal(t, ipc.Refresh{}, <-host.seen)
	assert.Len(t, host.received(), 2, "mount posts once, refresh posts again")
}

func TestClient_InterceptsErrorAndPMF(t *testing.T) {
	var mu sync.Mutex
	var reduced []ipc.Message
	store := NewStore(BitbucketIssueState{}, func(s BitbucketIssueState, a UIAction) BitbucketIssueState {
		if r, ok := a.(Received); ok {
			mu.Lock()
			reduced = append(reduced, r.Message)
			mu.Unlock()
		}
		return ReduceBitbucketIssue(s, a)
	})
	ch := ipc.NewChannel(nil, bbissue.Messages())
	c := NewClient(ch, store)

	store.Dispatch(MarkLoading{})
	ch.Dispatch(ipc.ErrorMessage{Reason: ipc.ErrorReason{Text: "first"}})
	ch.Dispatch(ipc.ErrorMessage{Reason: ipc.ErrorReason{Title: "second"}, Nonce: "n1"})
	ch.Dispatch(ipc.PMFStatus{ShowPMF: true})

	mu.Lock()
	assert.Empty(t, reduced, "errors and PMF status stay out of the screen reducer")
	mu.Unlock()
	assert.True(t, store.State().IsLoading, "an error message alone does not end a request")

	reason, ok := c.Banner().Current()
	require.True(t, ok)
	assert.Equal(t, "second", reason.String())
	assert.Equal(t, 2, c.Banner().Seen())
	assert.True(t, c.PMF().Visible())

	ch.Dispatch(bbissue.InitComments{})
	mu.Lock()
	assert.Equal(t, []ipc.Message{bbissue.InitComments{}}, reduced)
	mu.Unlock()

	c.Banner().Dismiss()
	_, ok = c.Banner().Current()
	assert.False(t, ok)

	c.Close()
	ch.Dispatch(bbissue.InitComments{})
	mu.Lock()
	assert.Len(t, reduced, 1)
	mu.Unlock()
}

func TestClient_PlainHandlerSeesOnlyScreenMessages(t *testing.T) {
	h := &handled{}
	ch := ipc.NewChannel(nil, bbissue.Messages())
	NewClient(ch, h)

	ch.Dispatch(ipc.ErrorMessage{Reason: ipc.ErrorReason{Title: "boom"}})
	ch.Dispatch(ipc.PMFStatus{ShowPMF: false})
	ch.Dispatch(bbissue.InitComments{})

	assert.Equal(t, []ipc.Message{bbissue.InitComments{}}, h.all())
}

func TestPMFController_AnswersHideBanner(t *testing.T) {
	c, host := newTestClient(t, bbissue.Actions(), bbissue.Messages(), nil, nil)
	pmf := c.PMF()

	for _, tt := range []struct {
		answer func() error
		want   ipc.Action
	}{
		{pmf.DismissLater, ipc.DismissPMFLater{}},
		{pmf.DismissNever, ipc.DismissPMFNever{}},
		{pmf.OpenSurvey, ipc.OpenPMFSurvey{}},
		{func() error { return pmf.Submit(ipc.PMFData{Q1: "very"}) }, ipc.SubmitPMF{PMFData: ipc.PMFData{Q1: "very"}}},
	} {
		pmf.setVisible(true)
		require.NoError(t, tt.answer())
		assert.False(t, pmf.Visible())
		assert.Equal(t, tt.want, <-host.seen)
	}
}

func TestRequest_MatchesNonce(t *testing.T) {
	store := NewStore(BitbucketIssueState{}, ReduceBitbucketIssue)
	c, _ := newTestClient(t, bbissue.Actions(), bbissue.Messages(), store, func(a ipc.Action) []ipc.Message {
		req, ok := a.(bbissue.UpdateStatusRequest)
		if !ok {
			return nil
		}
		return []ipc.Message{
			bbissue.UpdateStatusResponse{Status: "someone else's", Nonce: "other"},
			bbissue.UpdateStatusResponse{Status: req.Status, Nonce: req.Nonce},
		}
	})

	status, err := BitbucketIssueClient{c}.UpdateStatus(context.Background(), "resolved")
	require.NoError(t, err)
	assert.Equal(t, "resolved", status)

	require.Eventually(t, func() bool { return store.State().Issue.State == "resolved" }, time.Second, 5*time.Millisecond)
	assert.False(t, store.State().IsLoading)
}

func TestRequest_RemoteErrorClearsLoading(t *testing.T) {
	store := NewStore(StartWorkState{}, ReduceStartWork)
	c, _ := newTestClient(t, startwork.Actions(), startwork.Messages(), store, func(a ipc.Action) []ipc.Message {
		req := a.(startwork.StartRequest)
		return []ipc.Message{ipc.ErrorMessage{Reason: ipc.ErrorReason{Title: "Error transitioning issue"}, Nonce: req.Nonce}}
	})

	_, err := StartWorkClient{c}.StartWork(context.Background(), startwork.StartRequest{TransitionIssueEnabled: true})
	var remote *ipc.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Error transitioning issue", remote.Reason.Title)

	assert.False(t, store.State().IsLoading)
	reason, ok := c.Banner().Current()
	require.True(t, ok)
	assert.Equal(t, "Error transitioning issue", reason.Title)
}

func TestRequest_TimeoutClearsLoading(t *testing.T) {
	store := NewStore(StartWorkState{}, ReduceStartWork)
	c, _ := newTestClient(t, startwork.Actions(), startwork.Messages(), store, nil, WithTimeout(30*time.Millisecond))

	_, err := StartWorkClient{c}.StartWork(context.Background(), startwork.StartRequest{})
	assert.ErrorIs(t, err, ipc.ErrTimeout)
	assert.False(t, store.State().IsLoading)
}

func TestCancellable_PostsCancelRequest(t *testing.T) {
	c, host := newTestClient(t, bbissue.Actions(), bbissue.Messages(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := BitbucketIssueClient{c}.FetchUsers(ctx, "ro")
		done <- err
	}()

	req, ok := (<-host.seen).(bbissue.FetchUsersRequest)
	require.True(t, ok)
	assert.NotEmpty(t, req.AbortKey)
	assert.NotEmpty(t, req.Nonce)
	assert.NotEqual(t, req.AbortKey, req.Nonce)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, ipc.CancelRequest{AbortKey: req.AbortKey}, <-host.seen)
}

func TestCancellable_NoCancelAfterReply(t *testing.T) {
	c, host := newTestClient(t, bbissue.Actions(), bbissue.Messages(), nil, func(a ipc.Action) []ipc.Message {
		if req, ok := a.(bbissue.FetchUsersRequest); ok {
			return []ipc.Message{bbissue.FetchUsersResponse{Users: []model.User{{AccountID: "u1"}}, Nonce: req.Nonce}}
		}
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())

	users, err := BitbucketIssueClient{c}.FetchUsers(ctx, "ro")
	require.NoError(t, err)
	assert.Len(t, users, 1)
	<-host.seen
	cancel()

	select {
	case a := <-host.seen:
		t.Fatalf("unexpected %T after reply", a)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_CommonActions(t *testing.T) {
	c, host := newTestClient(t, bbissue.Actions(), bbissue.Messages(), nil, nil)

	require.NoError(t, c.ExternalLink("welcome", "atlascodeDocs"))
	require.NoError(t, c.CopyLink("issue", "https://x/1"))
	require.NoError(t, c.OpenJiraIssue("AX-1"))
	require.NoError(t, c.ReportError(errors.New("render failed")))

	assert.Equal(t, ipc.ExternalLink{Source: "welcome", LinkID: "atlascodeDocs"}, <-host.seen)
	assert.Equal(t, ipc.CopyLink{LinkType: "issue", URL: "https://x/1"}, <-host.seen)
	assert.Equal(t, ipc.OpenJiraIssue{IssueOrKey: "AX-1"}, <-host.seen)
	sent := (<-host.seen).(ipc.SendAnalytics)
	assert.Equal(t, "render failed", sent.ErrorInfo.Message)
}
