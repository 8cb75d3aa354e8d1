package webview

import (
	"context"

	"github.com/kastheco/atlas/ipc/settings"
	"github.com/kastheco/atlas/model"
)

// The interfaces below are the backend collaborators of each screen. Every
// method is a blocking call; controllers run them on the dispatch goroutine.

// BitbucketIssueAPI backs the Bitbucket issue viewer.
type BitbucketIssueAPI interface {
	GetIssue(ctx context.Context, issue model.BitbucketIssue) (model.BitbucketIssue, error)
	GetComments(ctx context.Context, issue model.BitbucketIssue) ([]model.Comment, error)
	// UpdateStatus returns the status the issue ended up in.
	UpdateStatus(ctx context.Context, issue model.BitbucketIssue, status string) (string, error)
	// PostComment returns the full comment set after posting.
	PostComment(ctx context.Context, issue model.BitbucketIssue, content string) ([]model.Comment, error)
	FetchUsers(ctx context.Context, site model.BitbucketSite, query string) ([]model.User, error)
	// Assign returns the new assignee; an empty accountID unassigns.
	Assign(ctx context.Context, issue model.BitbucketIssue, accountID string) (*model.User, error)
	OpenStartWork(ctx context.Context, issue model.BitbucketIssue) error
	CreateJiraIssue(ctx context.Context, issue model.BitbucketIssue) error
}

// CreateIssueAPI backs the create Bitbucket issue screen.
type CreateIssueAPI interface {
	Sites(ctx context.Context) ([]model.BitbucketSite, error)
	CreateIssue(ctx context.Context, site model.BitbucketSite, title, description, kind, priority string) (model.BitbucketIssue, error)
}

// CreatePullRequestInput is everything needed to open a pull request.
type CreatePullRequestInput struct {
	Repo              model.WorkspaceRepo
	Site              model.BitbucketSite
	Reviewers         []model.User
	Title             string
	Summary           string
	SourceBranch      model.Branch
	DestinationBranch model.Branch
	PushLocalChanges  bool
	CloseSourceBranch bool
}

// CreatePullRequestAPI backs the create pull request screen.
type CreatePullRequestAPI interface {
	Repositories(ctx context.Context) ([]model.WorkspaceRepo, error)
	Details(ctx context.Context, repo model.WorkspaceRepo, source, destination model.Branch) ([]model.Commit, []model.FileDiff, error)
	// IssueForBranch returns the Jira issue named by branch, or nil.
	IssueForBranch(ctx context.Context, branch string) (*model.MinimalIssue, error)
	FetchUsers(ctx context.Context, site model.BitbucketSite, query string) ([]model.User, error)
	CreatePullRequest(ctx context.Context, in CreatePullRequestInput) (model.PullRequest, error)
	TransitionIssue(ctx context.Context, issue model.MinimalIssue, t model.Transition) error
	OpenDiff(ctx context.Context, diff model.FileDiff) error
}

// TasksResult is the task and comment sets after a task mutation.
type TasksResult struct {
	Tasks    []model.Task
	Comments []model.Comment
}

// PullRequestAPI backs the pull request details screen.
type PullRequestAPI interface {
	GetPullRequest(ctx context.Context, pr model.PullRequest) (model.PullRequest, error)
	CurrentUser(ctx context.Context, site model.SiteInfo) (model.User, error)
	CurrentBranch(ctx context.Context, pr model.PullRequest) (string, error)

	GetComments(ctx context.Context, pr model.PullRequest) ([]model.Comment, error)
	GetCommits(ctx context.Context, pr model.PullRequest) ([]model.Commit, error)
	GetBuildStatuses(ctx context.Context, pr model.PullRequest) ([]model.BuildStatus, error)
	GetMergeStrategies(ctx context.Context, pr model.PullRequest) ([]model.MergeStrategy, error)
	GetTasks(ctx context.Context, pr model.PullRequest) ([]model.Task, error)
	GetFileDiffs(ctx context.Context, pr model.PullRequest, comments []model.Comment) ([]model.FileDiff, error)
	GetRelatedJiraIssues(ctx context.Context, pr model.PullRequest, commits []model.Commit, comments []model.Comment) ([]model.MinimalIssue, error)
	GetRelatedBitbucketIssues(ctx context.Context, pr model.PullRequest, commits []model.Commit, comments []model.Comment) ([]model.BitbucketIssue, error)

	FetchUsers(ctx context.Context, site model.BitbucketSite, query string) ([]model.User, error)
	UpdateSummary(ctx context.Context, pr model.PullRequest, text string) (model.Content, error)
	UpdateTitle(ctx context.Context, pr model.PullRequest, text string) (string, error)
	UpdateReviewers(ctx context.Context, pr model.PullRequest, reviewers []model.User) ([]model.Reviewer, error)
	UpdateApprovalStatus(ctx context.Context, pr model.PullRequest, status model.ApprovalStatus) (model.ApprovalStatus, error)
	// Checkout returns the branch name now checked out.
	Checkout(ctx context.Context, pr model.PullRequest) (string, error)

	PostComment(ctx context.Context, pr model.PullRequest, text string, parentID *int, inline *model.CommentInline) ([]model.Comment, error)
	EditComment(ctx context.Context, pr model.PullRequest, content string, commentID int) ([]model.Comment, error)
	DeleteComment(ctx context.Context, pr model.PullRequest, comment model.Comment) ([]model.Comment, error)
	AddTask(ctx context.Context, pr model.PullRequest, content string, commentID *int) (TasksResult, error)
	EditTask(ctx context.Context, pr model.PullRequest, task model.Task) (TasksResult, error)
	DeleteTask(ctx context.Context, pr model.PullRequest, task model.Task) (TasksResult, error)

	OpenDiff(ctx context.Context, diff model.FileDiff) error
	Merge(ctx context.Context, pr model.PullRequest, strategy model.MergeStrategy, message string, closeSource bool, issues []model.MinimalIssue) (model.MergeStatus, error)
	OpenBuildStatus(ctx context.Context, status model.BuildStatus) error
}

// Sites lists the authenticated sites per product.
type Sites struct {
	Jira      []model.SiteInfo
	Bitbucket []model.SiteInfo
}

// SiteAuthAPI is the login surface shared by settings and onboarding.
type SiteAuthAPI interface {
	Sites(ctx context.Context) (Sites, error)
	// Login authenticates against site and returns the updated site lists.
	Login(ctx context.Context, site model.SiteInfo, auth model.AuthInfo) (Sites, error)
	Logout(ctx context.Context, site model.SiteInfo) (Sites, error)
}

// SettingsAPI backs the settings screen.
type SettingsAPI interface {
	SiteAuthAPI
	Config(ctx context.Context, target settings.Target) (map[string]any, error)
	// SaveSettings applies changes, removes the keys in removes and returns
	// the resulting configuration.
	SaveSettings(ctx context.Context, target settings.Target, changes map[string]any, removes []string) (map[string]any, error)
	OpenJSON(ctx context.Context, target settings.Target) error
}

// OnboardingAPI backs the onboarding screen.
type OnboardingAPI interface {
	SiteAuthAPI
	SaveSettings(ctx context.Context, changes map[string]any, removes []string) error
	OpenSettings(ctx context.Context) error
}

// StartWorkAPI backs the start work screen.
type StartWorkAPI interface {
	GetIssue(ctx context.Context, issue model.MinimalIssue) (model.MinimalIssue, error)
	Repositories(ctx context.Context) ([]model.WorkspaceRepo, error)
	// TransitionAndAssign assigns issue to the current user, moves it
	// through t and returns the resulting status.
	TransitionAndAssign(ctx context.Context, issue model.MinimalIssue, t model.Transition) (model.Status, error)
	// CreateOrCheckoutBranch switches repo to branch name, creating it from
	// source when needed and setting up tracking on remote.
	CreateOrCheckoutBranch(ctx context.Context, repo model.WorkspaceRepo, name string, source model.Branch, remote string) (model.Branch, error)
	OpenSettings(ctx context.Context) error
}

// PipelineAPI backs the pipeline summary screen.
type PipelineAPI interface {
	GetPipeline(ctx context.Context, p model.Pipeline) (model.Pipeline, error)
	GetSteps(ctx context.Context, p model.Pipeline) ([]model.PipelineStep, error)
	ReRun(ctx context.Context, p model.Pipeline) (model.Pipeline, error)
	FetchLogRange(ctx context.Context, p model.Pipeline, stepID string, ref model.LogReference) ([]string, error)
	ViewInWebBrowser(ctx context.Context, p model.Pipeline) error
}
