package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/model"
	"github.com/kastheco/atlas/webview"
)

type discardPoster struct{}

func (discardPoster) PostMessage(ipc.Message) error { return nil }

type jiraStub struct{ site model.SiteInfo }

func (j jiraStub) Site() model.SiteInfo { return j.site }
func (j jiraStub) GetIssue(_ context.Context, key string) (model.MinimalIssue, error) {
	return model.MinimalIssue{Key: key, Site: j.site}, nil
}
func (j jiraStub) TransitionIssue(context.Context, string, string) error { return nil }
func (j jiraStub) TransitionAndAssign(_ context.Context, _ model.MinimalIssue, t model.Transition) (model.Status, error) {
	return t.To, nil
}

func testEnv(t *testing.T) serveEnv {
	t.Helper()
	return serveEnv{
		cfg:       config.DefaultConfig(),
		configDir: t.TempDir(),
		common:    webview.NewCommonHandler(webview.CommonDeps{}),
		workspace: webview.NewWorkspace(nil),
	}
}

func TestNewController(t *testing.T) {
	withJira := testEnv(t)
	withJira.jira = jiraStub{site: model.SiteInfo{Host: "acme.atlassian.net", Product: model.ProductJira}}

	tests := []struct {
		name    string
		opts    serveOptions
		env     serveEnv
		want    webview.ScreenID
		wantErr error
		errText string
	}{
		{name: "welcome", opts: serveOptions{screen: "welcomeScreen"}, env: testEnv(t), want: webview.ScreenWelcome},
		{name: "settings defaults to user", opts: serveOptions{screen: "settingsScreen"}, env: testEnv(t), want: webview.ScreenSettings},
		{name: "settings workspace", opts: serveOptions{screen: "settingsScreen", target: "workspace"}, env: testEnv(t), want: webview.ScreenSettings},
		{name: "settings bad target", opts: serveOptions{screen: "settingsScreen", target: "team"}, env: testEnv(t), errText: `unknown settings target "team"`},
		{name: "onboarding", opts: serveOptions{screen: "onboardingScreen", remote: true}, env: testEnv(t), want: webview.ScreenOnboarding},
		{name: "create pull request", opts: serveOptions{screen: "createPullRequestScreen"}, env: testEnv(t), want: webview.ScreenCreatePullRequest},
		{name: "start work", opts: serveOptions{screen: "startWorkScreen", issue: "AX-1"}, env: withJira, want: webview.ScreenStartWork},
		{name: "start work without jira", opts: serveOptions{screen: "startWorkScreen", issue: "AX-1"}, env: testEnv(t), wantErr: jira.ErrNotConfigured},
		{name: "start work without issue", opts: serveOptions{screen: "startWorkScreen"}, env: withJira, errText: "--issue is required"},
		{name: "pull request details", opts: serveOptions{screen: "pullRequestDetailsScreen"}, env: testEnv(t), wantErr: webview.ErrUnsupported},
		{name: "pipeline", opts: serveOptions{screen: "pipelineSummaryScreen"}, env: testEnv(t), wantErr: webview.ErrUnsupported},
		{name: "unknown", opts: serveOptions{screen: "nope"}, env: testEnv(t), errText: `unknown screen "nope"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, actions, err := newController(tt.opts, tt.env, discardPoster{})
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				return
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.ScreenDetails().ID)
			_, ok := actions.Zero(ipc.ActionRefresh)
			assert.True(t, ok, "every screen accepts refresh")
		})
	}
}

func TestNewController_StartWorkActions(t *testing.T) {
	env := testEnv(t)
	env.jira = jiraStub{}
	_, actions, err := newController(serveOptions{screen: "startWorkScreen", issue: "AX-1"}, env, discardPoster{})
	require.NoError(t, err)

	data, err := ipc.EncodeAction(startwork.StartRequest{Nonce: "n1"})
	require.NoError(t, err)
	a, err := actions.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "n1", ipc.NonceOf(a))
}

func TestServe_SettingsOverPipe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	env := testEnv(t)
	env.cfg.JiraSites = []model.SiteInfo{{Host: "acme.atlassian.net", Product: model.ProductJira}}
	env.cfg.Settings = map[string]any{"jira.enabled": true}

	uiEnd, hostEnd := ipc.Pipe()
	poster := webview.NewTransportPoster(hostEnd)
	c, actions, err := newController(serveOptions{screen: "settingsScreen"}, env, poster)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- webview.NewHost(hostEnd, poster, actions, c).Run(ctx) }()

	data, err := ipc.EncodeAction(ipc.Refresh{})
	require.NoError(t, err)
	require.NoError(t, uiEnd.Send(data))

	messages := settings.Messages()
	var init settings.Init
	for {
		raw, err := uiEnd.Receive(ctx)
		require.NoError(t, err)
		m, err := messages.Decode(raw)
		require.NoError(t, err)
		if got, ok := m.(settings.Init); ok {
			init = got
			break
		}
	}
	assert.Equal(t, settings.TargetUser, init.Target)
	assert.Equal(t, true, init.Config["jira.enabled"])
	require.Len(t, init.JiraSites, 1)
	assert.Equal(t, "acme.atlassian.net", init.JiraSites[0].Host)

	require.NoError(t, uiEnd.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("host did not stop after the UI hung up")
	}
}
