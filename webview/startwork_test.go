package webview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/model"
)

type fakeStartWorkAPI struct {
	mu            sync.Mutex
	calls         []string
	transitionErr error
	branchErr     error
	lastBranch    string
	lastRemote    string
}

func (f *fakeStartWorkAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeStartWorkAPI) GetIssue(_ context.Context, issue model.MinimalIssue) (model.MinimalIssue, error) {
	f.record("getIssue")
	issue.Summary = "Crash on save"
	return issue, nil
}

func (f *fakeStartWorkAPI) Repositories(context.Context) ([]model.WorkspaceRepo, error) {
	f.record("repositories")
	return []model.WorkspaceRepo{{Name: "app", RootURI: "file:///src/app"}}, nil
}

func (f *fakeStartWorkAPI) TransitionAndAssign(_ context.Context, _ model.MinimalIssue, t model.Transition) (model.Status, error) {
	f.record("transition")
	if f.transitionErr != nil {
		return model.Status{}, f.transitionErr
	}
	return t.To, nil
}

func (f *fakeStartWorkAPI) CreateOrCheckoutBranch(_ context.Context, _ model.WorkspaceRepo, name string, _ model.Branch, remote string) (model.Branch, error) {
	f.record("branch")
	if f.branchErr != nil {
		return model.Branch{}, f.branchErr
	}
	f.lastBranch, f.lastRemote = name, remote
	b := model.Branch{Name: name}
	if remote != "" {
		b.Upstream = remote + "/" + name
	}
	return b, nil
}

func (f *fakeStartWorkAPI) OpenSettings(context.Context) error { return nil }

var inProgress = model.Transition{ID: "21", Name: "Start progress", To: model.Status{ID: "3", Name: "In Progress"}}

func TestStartWork_RunsStepsInOrder(t *testing.T) {
	tests := []struct {
		name      string
		req       startwork.StartRequest
		wantCalls []string
		wantResp  startwork.StartWorkResponse
	}{
		{
			name: "both steps",
			req: startwork.StartRequest{
				TransitionIssueEnabled: true,
				Transition:             inProgress,
				BranchSetupEnabled:     true,
				SourceBranch:           model.Branch{Name: "main"},
				TargetBranch:           "feature/AX-1-crash-on-save",
				Upstream:               "origin",
				Nonce:                  "n1",
			},
			wantCalls: []string{"transition", "branch"},
			wantResp: startwork.StartWorkResponse{
				TransistionStatus: "In Progress",
				Branch:            "feature/AX-1-crash-on-save",
				Upstream:          "origin",
				Nonce:             "n1",
			},
		},
		{
			name:      "transition only",
			req:       startwork.StartRequest{TransitionIssueEnabled: true, Transition: inProgress, Nonce: "n2"},
			wantCalls: []string{"transition"},
			wantResp:  startwork.StartWorkResponse{TransistionStatus: "In Progress", Nonce: "n2"},
		},
		{
			name:      "branch only without upstream",
			req:       startwork.StartRequest{BranchSetupEnabled: true, TargetBranch: "AX-1", Nonce: "n3"},
			wantCalls: []string{"branch"},
			wantResp:  startwork.StartWorkResponse{Branch: "AX-1", Nonce: "n3"},
		},
		{
			name:     "nothing enabled",
			req:      startwork.StartRequest{Nonce: "n4"},
			wantResp: startwork.StartWorkResponse{Nonce: "n4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			api := &fakeStartWorkAPI{}
			events := &eventSink{}
			ctrl := NewStartWorkController(rec, api, testCommon(events), model.MinimalIssue{Key: "AX-1"})

			ctrl.OnMessageReceived(context.Background(), tt.req)

			assert.Equal(t, tt.wantCalls, api.calls)
			assert.Equal(t, []startwork.StartWorkResponse{tt.wantResp}, posted[startwork.StartWorkResponse](rec))
			assert.Equal(t, []eventlog.EventKind{eventlog.EventStartWork}, events.kinds())
		})
	}
}

func TestStartWork_TransitionFailureStopsBranch(t *testing.T) {
	rec := &recorder{}
	api := &fakeStartWorkAPI{transitionErr: errors.New("transition not allowed")}
	ctrl := NewStartWorkController(rec, api, testCommon(nil), model.MinimalIssue{Key: "AX-1"})

	ctrl.OnMessageReceived(context.Background(), startwork.StartRequest{
		TransitionIssueEnabled: true,
		BranchSetupEnabled:     true,
		TargetBranch:           "AX-1",
		Nonce:                  "n",
	})

	assert.Equal(t, []string{"transition"}, api.calls)
	assert.Empty(t, posted[startwork.StartWorkResponse](rec))
	errs := posted[ipc.ErrorMessage](rec)
	require.Len(t, errs, 1)
	assert.Equal(t, "n", errs[0].Nonce)
	assert.Equal(t, "Error transitioning issue", errs[0].Reason.Title)
}

func TestStartWork_InitCarriesBranchOptions(t *testing.T) {
	rec := &recorder{}
	ctrl := NewStartWorkController(rec, &fakeStartWorkAPI{}, testCommon(nil), model.MinimalIssue{Key: "AX-1"},
		WithBranchTemplate("{{prefix}}{{issueKey}}"),
		WithBranchPrefixes([]string{"feature/"}))

	ctrl.OnMessageReceived(context.Background(), ipc.Refresh{})

	inits := posted[startwork.Init](rec)
	require.Len(t, inits, 1)
	assert.Equal(t, "Crash on save", inits[0].Issue.Summary)
	assert.Equal(t, "{{prefix}}{{issueKey}}", inits[0].CustomTemplate)
	assert.Equal(t, []string{"feature/"}, inits[0].CustomPrefixes)
	assert.Len(t, inits[0].RepoData, 1)
}

func TestStartWork_EndToEndOverTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	uiEnd, hostEnd := ipc.Pipe()
	api := &fakeStartWorkAPI{}
	poster := NewTransportPoster(hostEnd)
	ctrl := NewStartWorkController(poster, api, testCommon(nil), model.MinimalIssue{Key: "AX-1"})
	host := NewHost(hostEnd, poster, startwork.Actions(), ctrl)

	hostDone := make(chan error, 1)
	go func() { hostDone <- host.Run(ctx) }()

	ch := ipc.NewChannel(uiEnd, startwork.Messages())
	go func() { _ = ch.Run(ctx) }()

	resp, err := ipc.Await[startwork.StartWorkResponse](ctx, ch, startwork.StartRequest{
		TransitionIssueEnabled: true,
		Transition:             inProgress,
		BranchSetupEnabled:     true,
		SourceBranch:           model.Branch{Name: "main"},
		TargetBranch:           "feature/AX-1",
		Upstream:               "origin",
		Nonce:                  "e2e",
	}, time.Second, "e2e")
	require.NoError(t, err)

	assert.Equal(t, "In Progress", resp.TransistionStatus)
	assert.Equal(t, "feature/AX-1", resp.Branch)
	assert.Equal(t, "origin", resp.Upstream)
	assert.Equal(t, []string{"transition", "branch"}, api.calls)
	assert.Equal(t, "origin", api.lastRemote)

	require.NoError(t, hostEnd.Close())
	select {
	case err := <-hostDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("host did not stop after the transport closed")
	}
}
