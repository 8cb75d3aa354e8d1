package webview

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/model"
)

var jiraSite = model.SiteInfo{Host: "acme.atlassian.net", Product: model.ProductJira}

type fakeAuthenticator struct {
	err   error
	calls int
}

func (a *fakeAuthenticator) Authenticate(_ context.Context, site model.SiteInfo, _ model.AuthInfo) (model.SiteInfo, error) {
	a.calls++
	if a.err != nil {
		return site, a.err
	}
	site.ID = "cloud-1"
	site.UserID = "me"
	return site, nil
}

func TestConfigBackend_LoginPersistsSite(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuthenticator{}
	b := NewConfigBackend(dir, config.DefaultConfig(), WithAuthenticator(model.ProductJira, auth))
	ctx := context.Background()

	sites, err := b.Login(ctx, jiraSite, model.AuthInfo{})
	require.NoError(t, err)
	require.Len(t, sites.Jira, 1)
	assert.Equal(t, "cloud-1", sites.Jira[0].ID)
	assert.Empty(t, sites.Bitbucket)

	reloaded := config.LoadConfigFrom(dir)
	require.Len(t, reloaded.JiraSites, 1)
	assert.Equal(t, "me", reloaded.JiraSites[0].UserID)

	// Logging in again replaces rather than duplicates.
	_, err = b.Login(ctx, jiraSite, model.AuthInfo{})
	require.NoError(t, err)
	sites, err = b.Sites(ctx)
	require.NoError(t, err)
	assert.Len(t, sites.Jira, 1)

	sites, err = b.Logout(ctx, jiraSite)
	require.NoError(t, err)
	assert.Empty(t, sites.Jira)
	assert.Empty(t, config.LoadConfigFrom(dir).JiraSites)
}

func TestConfigBackend_LoginFailures(t *testing.T) {
	dir := t.TempDir()
	auth := &fakeAuthenticator{err: errors.New("bad token")}
	b := NewConfigBackend(dir, config.DefaultConfig(), WithAuthenticator(model.ProductJira, auth))

	_, err := b.Login(context.Background(), model.SiteInfo{Host: "bitbucket.org", Product: model.ProductBitbucket}, model.AuthInfo{})
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Zero(t, auth.calls)

	_, err = b.Login(context.Background(), jiraSite, model.AuthInfo{})
	assert.ErrorContains(t, err, "bad token")
	_, statErr := os.Stat(filepath.Join(dir, config.ConfigFileName))
	assert.True(t, os.IsNotExist(statErr), "a failed login must not write the config")
}

func TestConfigBackend_SettingsScopes(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()
	b := NewConfigBackend(dir, config.DefaultConfig(), WithWorkspaceRoot(root))
	ctx := context.Background()

	user, err := b.SaveSettings(ctx, settings.TargetUser, map[string]any{"jira.enabled": true, "theme": "dark"}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"jira.enabled": true, "theme": "dark"}, user)

	user, err = b.SaveSettings(ctx, settings.TargetUser, nil, []string{"theme"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"jira.enabled": true}, user)
	assert.Equal(t, map[string]any{"jira.enabled": true}, config.LoadConfigFrom(dir).Settings)

	ws, err := b.SaveSettings(ctx, settings.TargetWorkspace, map[string]any{"bitbucket.enabled": false}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"bitbucket.enabled": false}, ws)

	data, err := os.ReadFile(filepath.Join(root, ".atlas", "settings.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"bitbucket.enabled": false}`, string(data))

	// The scopes do not leak into each other.
	got, err := b.Config(ctx, settings.TargetUser)
	require.NoError(t, err)
	assert.NotContains(t, got, "bitbucket.enabled")
	got, err = b.Config(ctx, settings.TargetWorkspace)
	require.NoError(t, err)
	assert.NotContains(t, got, "jira.enabled")
}

func TestConfigBackend_WorkspaceScopeNeedsRoot(t *testing.T) {
	b := NewConfigBackend(t.TempDir(), config.DefaultConfig())
	_, err := b.Config(context.Background(), settings.TargetWorkspace)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, b.OpenJSON(context.Background(), settings.TargetWorkspace), ErrUnsupported)
}

func TestConfigBackend_OpenJSON(t *testing.T) {
	dir, root := t.TempDir(), t.TempDir()
	var opened []string
	b := NewConfigBackend(dir, config.DefaultConfig(), WithWorkspaceRoot(root),
		WithFileOpener(func(p string) error { opened = append(opened, p); return nil }))

	require.NoError(t, b.OpenJSON(context.Background(), settings.TargetUser))
	require.NoError(t, b.OpenJSON(context.Background(), settings.TargetWorkspace))
	assert.Equal(t, []string{
		filepath.Join(dir, config.ConfigFileName),
		filepath.Join(root, ".atlas", "settings.json"),
	}, opened)
}

type fakeNavigator struct {
	id   ScreenID
	seed any
}

func (n *fakeNavigator) Navigate(_ context.Context, id ScreenID, seed any) error {
	n.id, n.seed = id, seed
	return nil
}

func TestOnboardingBackend(t *testing.T) {
	dir := t.TempDir()
	nav := &fakeNavigator{}
	b := OnboardingBackend{ConfigBackend: NewConfigBackend(dir, config.DefaultConfig()), Navigator: nav}

	require.NoError(t, b.SaveSettings(context.Background(), map[string]any{"onboarding.done": true}, nil))
	assert.Equal(t, true, config.LoadConfigFrom(dir).Settings["onboarding.done"])

	require.NoError(t, b.OpenSettings(context.Background()))
	assert.Equal(t, ScreenSettings, nav.id)
	assert.Equal(t, settings.TargetUser, nav.seed)

	b.Navigator = nil
	assert.ErrorIs(t, b.OpenSettings(context.Background()), ErrUnsupported)
}

func TestFeedbackRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "feedback.jsonl")
	r := NewFeedbackRecorder(path)
	ctx := context.Background()

	assert.Error(t, r.SubmitFeedback(ctx, ipc.FeedbackData{}))
	require.NoError(t, r.SubmitFeedback(ctx, ipc.FeedbackData{Description: "love it", Source: "welcome"}))
	require.NoError(t, r.SubmitPMF(ctx, ipc.PMFData{Q1: "very"}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var kinds []string
	var last map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		last = nil
		require.NoError(t, json.Unmarshal(sc.Bytes(), &last))
		kinds = append(kinds, last["kind"].(string))
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, []string{"feedback", "pmf"}, kinds)
	assert.Equal(t, "very", last["pmf"].(map[string]any)["q1"])
}

func TestIssueBrowser(t *testing.T) {
	opener := &fakeOpener{}
	b := IssueBrowser{Site: model.SiteInfo{BaseURL: "https://acme.atlassian.net/"}, Opener: opener}
	require.NoError(t, b.OpenJiraIssue(context.Background(), "AX-7"))
	assert.Equal(t, []string{"https://acme.atlassian.net/browse/AX-7"}, opener.opened)

	assert.Error(t, IssueBrowser{Opener: opener}.OpenJiraIssue(context.Background(), "AX-7"))
}

func TestRef(t *testing.T) {
	tests := []struct {
		branch model.Branch
		want   string
	}{
		{model.Branch{Name: "main"}, "main"},
		{model.Branch{Name: "main", Remote: "origin"}, "origin/main"},
		{model.Branch{Name: "origin/main", Remote: "origin"}, "origin/main"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ref(tt.branch))
	}
}

type fakeJira struct {
	requested   []string
	transitions []string
}

func (j *fakeJira) Site() model.SiteInfo { return jiraSite }

func (j *fakeJira) GetIssue(_ context.Context, key string) (model.MinimalIssue, error) {
	j.requested = append(j.requested, key)
	return model.MinimalIssue{Key: key}, nil
}

func (j *fakeJira) TransitionIssue(_ context.Context, key, id string) error {
	j.transitions = append(j.transitions, key+":"+id)
	return nil
}

func (j *fakeJira) TransitionAndAssign(context.Context, model.MinimalIssue, model.Transition) (model.Status, error) {
	return model.Status{Name: "In Progress"}, nil
}

func TestLocalPullRequestBackend_Issues(t *testing.T) {
	j := &fakeJira{}
	b := &LocalPullRequestBackend{Jira: j}
	ctx := context.Background()

	issue, err := b.IssueForBranch(ctx, "feature/AX-12-fix-crash")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "AX-12", issue.Key)

	issue, err = b.IssueForBranch(ctx, "main")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.Equal(t, []string{"AX-12"}, j.requested)

	require.NoError(t, b.TransitionIssue(ctx, model.MinimalIssue{Key: "AX-12"}, model.Transition{ID: "21"}))
	assert.Equal(t, []string{"AX-12:21"}, j.transitions)

	_, err = b.CreatePullRequest(ctx, CreatePullRequestInput{})
	assert.ErrorIs(t, err, ErrUnsupported)

	noJira := &LocalPullRequestBackend{}
	issue, err = noJira.IssueForBranch(ctx, "feature/AX-12")
	require.NoError(t, err)
	assert.Nil(t, issue)
	assert.ErrorIs(t, noJira.TransitionIssue(ctx, model.MinimalIssue{Key: "AX-12"}, model.Transition{}), ErrUnsupported)
}

// mcpStub answers MCP tool calls with canned JSON keyed by tool name.
type mcpStub map[string]string

func (s mcpStub) CallTool(_ context.Context, name string, _ map[string]any) (*mcpclient.ToolResult, error) {
	text, ok := s[name]
	if !ok {
		return nil, errors.New("unexpected tool " + name)
	}
	return &mcpclient.ToolResult{Content: []mcpclient.ToolContent{{Type: "text", Text: text}}}, nil
}

func TestJiraAuthenticator(t *testing.T) {
	a := JiraAuthenticator{Caller: mcpStub{
		"getAccessibleAtlassianResources": `[{"id":"other","url":"https://other.atlassian.net"},{"id":"cloud-9","url":"https://acme.atlassian.net","name":"Acme"}]`,
		"atlassianUserInfo":               `{"account_id":"u-1","name":"Robin"}`,
	}}

	site, err := a.Authenticate(context.Background(), jiraSite, model.AuthInfo{})
	require.NoError(t, err)
	assert.Equal(t, "cloud-9", site.ID)
	assert.Equal(t, "u-1", site.UserID)
	assert.True(t, site.IsCloud)
	assert.Equal(t, "https://acme.atlassian.net", site.BaseURL)
	assert.Equal(t, "acme.atlassian.net", site.Name)

	_, err = a.Authenticate(context.Background(), model.SiteInfo{Host: "nowhere.atlassian.net"}, model.AuthInfo{})
	assert.ErrorContains(t, err, "no accessible Atlassian site")
}
