package webview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kastheco/atlas/internal/gitops"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/kastheco/atlas/model"
)

// ErrUnsupported marks an operation the running host cannot perform, such
// as opening another panel from a stdio host or calling Bitbucket.
var ErrUnsupported = errors.New("not supported by this host")

// Navigator opens another screen seeded with seed.
type Navigator interface {
	Navigate(ctx context.Context, id ScreenID, seed any) error
}

func navigate(ctx context.Context, nav Navigator, id ScreenID, seed any) error {
	if nav == nil {
		return fmt.Errorf("open %s: %w", id, ErrUnsupported)
	}
	return nav.Navigate(ctx, id, seed)
}

// JiraService is the part of *jira.Client the backends use.
type JiraService interface {
	Site() model.SiteInfo
	GetIssue(ctx context.Context, key string) (model.MinimalIssue, error)
	TransitionIssue(ctx context.Context, key, transitionID string) error
	TransitionAndAssign(ctx context.Context, issue model.MinimalIssue, t model.Transition) (model.Status, error)
}

var _ JiraService = (*jira.Client)(nil)

// Workspace is the set of git repositories open in the editor.
type Workspace struct {
	repos    []*gitops.Repo
	prefixes []string
}

// NewWorkspace offers prefixes as branch types on every repository.
func NewWorkspace(prefixes []string, repos ...*gitops.Repo) *Workspace {
	return &Workspace{repos: repos, prefixes: prefixes}
}

// Repositories snapshots every repository.
func (w *Workspace) Repositories(ctx context.Context) ([]model.WorkspaceRepo, error) {
	out := make([]model.WorkspaceRepo, 0, len(w.repos))
	for _, r := range w.repos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ws, err := r.Snapshot("")
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", r.Path(), err)
		}
		ws.BranchTypes = branchTypes(w.prefixes)
		out = append(out, ws)
	}
	return out, nil
}

// Repo returns the repository ws describes.
func (w *Workspace) Repo(ws model.WorkspaceRepo) (*gitops.Repo, error) {
	for _, r := range w.repos {
		if r.RootURI() == ws.RootURI {
			return r, nil
		}
	}
	return nil, fmt.Errorf("repository %s is not part of the workspace", ws.RootURI)
}

func branchTypes(prefixes []string) []model.BranchType {
	if len(prefixes) == 0 {
		return nil
	}
	out := make([]model.BranchType, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, model.BranchType{Kind: strings.TrimSuffix(p, "/"), Prefix: p})
	}
	return out
}

// ref names b for git: remote-tracking branches are qualified by remote.
func ref(b model.Branch) string {
	if b.Remote == "" || strings.HasPrefix(b.Name, b.Remote+"/") {
		return b.Name
	}
	return b.Remote + "/" + b.Name
}

// StartWorkBackend serves the start work screen from Jira and the local
// workspace.
type StartWorkBackend struct {
	Jira      JiraService
	Workspace *Workspace
	Navigator Navigator
}

func (b *StartWorkBackend) GetIssue(ctx context.Context, issue model.MinimalIssue) (model.MinimalIssue, error) {
	return b.Jira.GetIssue(ctx, issue.Key)
}

func (b *StartWorkBackend) Repositories(ctx context.Context) ([]model.WorkspaceRepo, error) {
	return b.Workspace.Repositories(ctx)
}

func (b *StartWorkBackend) TransitionAndAssign(ctx context.Context, issue model.MinimalIssue, t model.Transition) (model.Status, error) {
	return b.Jira.TransitionAndAssign(ctx, issue, t)
}

func (b *StartWorkBackend) CreateOrCheckoutBranch(ctx context.Context, ws model.WorkspaceRepo, name string, source model.Branch, remote string) (model.Branch, error) {
	r, err := b.Workspace.Repo(ws)
	if err != nil {
		return model.Branch{}, err
	}
	return r.CreateOrCheckoutBranch(ctx, name, source, remote)
}

func (b *StartWorkBackend) OpenSettings(ctx context.Context) error {
	return navigate(ctx, b.Navigator, ScreenSettings, nil)
}

// LocalPullRequestBackend serves the create pull request screen from the
// local workspace. Branch comparison and issue lookup work offline; the
// Bitbucket calls report ErrUnsupported.
type LocalPullRequestBackend struct {
	Workspace *Workspace
	// Jira is optional; without it no issue is matched to a branch.
	Jira JiraService
}

func (b *LocalPullRequestBackend) Repositories(ctx context.Context) ([]model.WorkspaceRepo, error) {
	return b.Workspace.Repositories(ctx)
}

func (b *LocalPullRequestBackend) Details(ctx context.Context, ws model.WorkspaceRepo, source, destination model.Branch) ([]model.Commit, []model.FileDiff, error) {
	r, err := b.Workspace.Repo(ws)
	if err != nil {
		return nil, nil, err
	}
	base, head := ref(destination), ref(source)
	commits, err := r.Log(ctx, base, head)
	if err != nil {
		return nil, nil, err
	}
	diffs, err := r.DiffStat(ctx, base, head)
	if err != nil {
		return nil, nil, err
	}
	return commits, diffs, nil
}

// IssueForBranch looks up the first issue key in branch.
func (b *LocalPullRequestBackend) IssueForBranch(ctx context.Context, branch string) (*model.MinimalIssue, error) {
	if b.Jira == nil {
		return nil, nil
	}
	keys := jira.ExtractIssueKeys(branch)
	if len(keys) == 0 {
		return nil, nil
	}
	issue, err := b.Jira.GetIssue(ctx, keys[0])
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (b *LocalPullRequestBackend) FetchUsers(context.Context, model.BitbucketSite, string) ([]model.User, error) {
	return nil, fmt.Errorf("fetch users: %w", ErrUnsupported)
}

func (b *LocalPullRequestBackend) CreatePullRequest(_ context.Context, in CreatePullRequestInput) (model.PullRequest, error) {
	return model.PullRequest{}, fmt.Errorf("create pull request on %s: %w", in.Site.FullName(), ErrUnsupported)
}

func (b *LocalPullRequestBackend) TransitionIssue(ctx context.Context, issue model.MinimalIssue, t model.Transition) error {
	if b.Jira == nil {
		return fmt.Errorf("transition %s: %w", issue.Key, ErrUnsupported)
	}
	return b.Jira.TransitionIssue(ctx, issue.Key, t.ID)
}

func (b *LocalPullRequestBackend) OpenDiff(_ context.Context, diff model.FileDiff) error {
	return fmt.Errorf("open diff of %s: %w", diff.Path(), ErrUnsupported)
}

// IssueBrowser opens Jira issues of one site in the browser.
type IssueBrowser struct {
	Site   model.SiteInfo
	Opener URLOpener
}

func (b IssueBrowser) OpenJiraIssue(_ context.Context, key string) error {
	base := strings.TrimRight(b.Site.BaseURL, "/")
	if base == "" {
		return fmt.Errorf("open %s: no Jira site configured", key)
	}
	opener := b.Opener
	if opener == nil {
		opener = BrowserOpener{}
	}
	return opener.OpenURL(base + "/browse/" + url.PathEscape(key))
}
