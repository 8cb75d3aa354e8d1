package webview

import (
	"context"
	"sync"
	"time"

	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/model"
)

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d == 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fakeIssueAPI struct {
	delay    time.Duration
	comments []model.Comment
	// blockUsers makes FetchUsers wait for cancellation.
	blockUsers chan struct{}
}

func (f *fakeIssueAPI) GetIssue(ctx context.Context, issue model.BitbucketIssue) (model.BitbucketIssue, error) {
	return issue, sleepCtx(ctx, f.delay)
}

func (f *fakeIssueAPI) GetComments(context.Context, model.BitbucketIssue) ([]model.Comment, error) {
	return f.comments, nil
}

func (f *fakeIssueAPI) UpdateStatus(_ context.Context, _ model.BitbucketIssue, status string) (string, error) {
	return status, nil
}

func (f *fakeIssueAPI) PostComment(_ context.Context, _ model.BitbucketIssue, content string) ([]model.Comment, error) {
	return append(f.comments, model.Comment{ID: len(f.comments) + 1, Content: model.Content{Raw: content}}), nil
}

func (f *fakeIssueAPI) FetchUsers(ctx context.Context, _ model.BitbucketSite, _ string) ([]model.User, error) {
	if f.blockUsers != nil {
		close(f.blockUsers)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []model.User{{AccountID: "u1"}}, nil
}

func (f *fakeIssueAPI) Assign(_ context.Context, _ model.BitbucketIssue, accountID string) (*model.User, error) {
	if accountID == "" {
		return nil, nil
	}
	return &model.User{AccountID: accountID}, nil
}

func (f *fakeIssueAPI) OpenStartWork(context.Context, model.BitbucketIssue) error   { return nil }
func (f *fakeIssueAPI) CreateJiraIssue(context.Context, model.BitbucketIssue) error { return nil }

type fakeCreateIssueAPI struct{}

func (fakeCreateIssueAPI) Sites(context.Context) ([]model.BitbucketSite, error) {
	return []model.BitbucketSite{{Owner: "acme", RepoSlug: "app"}}, nil
}

func (fakeCreateIssueAPI) CreateIssue(_ context.Context, site model.BitbucketSite, title, _, kind, priority string) (model.BitbucketIssue, error) {
	return model.BitbucketIssue{ID: 1, Site: site, Title: title, Kind: kind, Priority: priority}, nil
}

type fakeCreatePRAPI struct {
	mu          sync.Mutex
	transitions []string
	createErr   error
}

func (f *fakeCreatePRAPI) Repositories(context.Context) ([]model.WorkspaceRepo, error) {
	return []model.WorkspaceRepo{{Name: "app"}}, nil
}

func (f *fakeCreatePRAPI) Details(context.Context, model.WorkspaceRepo, model.Branch, model.Branch) ([]model.Commit, []model.FileDiff, error) {
	return nil, nil, nil
}

func (f *fakeCreatePRAPI) IssueForBranch(context.Context, string) (*model.MinimalIssue, error) {
	return nil, nil
}

func (f *fakeCreatePRAPI) FetchUsers(context.Context, model.BitbucketSite, string) ([]model.User, error) {
	return nil, nil
}

func (f *fakeCreatePRAPI) CreatePullRequest(_ context.Context, in CreatePullRequestInput) (model.PullRequest, error) {
	if f.createErr != nil {
		return model.PullRequest{}, f.createErr
	}
	return model.PullRequest{ID: "7", Title: in.Title, Site: in.Site}, nil
}

func (f *fakeCreatePRAPI) TransitionIssue(_ context.Context, issue model.MinimalIssue, t model.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transitions = append(f.transitions, issue.Key+":"+t.ID)
	return nil
}

func (f *fakeCreatePRAPI) OpenDiff(context.Context, model.FileDiff) error { return nil }

type fakeSettingsAPI struct {
	mu      sync.Mutex
	sites   Sites
	config  map[string]any
	targets []settings.Target
}

func (f *fakeSettingsAPI) Sites(context.Context) (Sites, error) { return f.sites, nil }

func (f *fakeSettingsAPI) Login(_ context.Context, site model.SiteInfo, _ model.AuthInfo) (Sites, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sites.Jira = append(f.sites.Jira, site)
	return f.sites, nil
}

func (f *fakeSettingsAPI) Logout(context.Context, model.SiteInfo) (Sites, error) {
	return Sites{}, nil
}

func (f *fakeSettingsAPI) Config(_ context.Context, target settings.Target) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return f.config, nil
}

func (f *fakeSettingsAPI) SaveSettings(_ context.Context, target settings.Target, changes map[string]any, _ []string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	return changes, nil
}

func (f *fakeSettingsAPI) OpenJSON(context.Context, settings.Target) error { return nil }

type fakeOnboardingAPI struct {
	fakeSettingsAPI
	loginErr error
}

func (f *fakeOnboardingAPI) Login(ctx context.Context, site model.SiteInfo, auth model.AuthInfo) (Sites, error) {
	if f.loginErr != nil {
		return Sites{}, f.loginErr
	}
	return f.fakeSettingsAPI.Login(ctx, site, auth)
}

func (f *fakeOnboardingAPI) SaveSettings(context.Context, map[string]any, []string) error { return nil }
func (f *fakeOnboardingAPI) OpenSettings(context.Context) error                          { return nil }

type fakePipelineAPI struct{}

func (fakePipelineAPI) GetPipeline(_ context.Context, p model.Pipeline) (model.Pipeline, error) {
	return p, nil
}

func (fakePipelineAPI) GetSteps(context.Context, model.Pipeline) ([]model.PipelineStep, error) {
	return []model.PipelineStep{{UUID: "s1"}}, nil
}

func (fakePipelineAPI) ReRun(_ context.Context, p model.Pipeline) (model.Pipeline, error) {
	p.BuildNumber++
	return p, nil
}

func (fakePipelineAPI) FetchLogRange(context.Context, model.Pipeline, string, model.LogReference) ([]string, error) {
	return []string{"line"}, nil
}

func (fakePipelineAPI) ViewInWebBrowser(context.Context, model.Pipeline) error { return nil }
