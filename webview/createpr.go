package webview

import (
	"context"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/createpr"
	"github.com/kastheco/atlas/model"
)

// CreatePullRequestController drives the create pull request screen.
type CreatePullRequestController struct {
	screen
	api CreatePullRequestAPI
}

func NewCreatePullRequestController(poster MessagePoster, api CreatePullRequestAPI, common *CommonHandler) *CreatePullRequestController {
	return &CreatePullRequestController{screen: newScreen(poster, common), api: api}
}

func (c *CreatePullRequestController) Title() string { return "Create pull request" }

func (c *CreatePullRequestController) ScreenDetails() ScreenDetails {
	return ScreenDetails{ID: ScreenCreatePullRequest, Product: model.ProductBitbucket}
}

// Update ignores factoryData; the screen is seeded from the workspace.
func (c *CreatePullRequestController) Update(any) {
	c.invalidate(context.Background())
}

func (c *CreatePullRequestController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		repos, err := c.api.Repositories(ctx)
		if err != nil {
			c.fail(err, "Error fetching repositories", "")
			return false
		}
		c.post(createpr.Init{Repositories: repos})
		return true
	})
}

func (c *CreatePullRequestController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case createpr.FetchDetails:
		commits, diffs, err := c.api.Details(ctx, a.Repo, a.SourceBranch, a.DestinationBranch)
		if err != nil {
			c.fail(err, "Error fetching branch details", "")
			return
		}
		c.post(createpr.UpdateDetails{Commits: commits, FileDiffs: diffs})
	case createpr.FetchIssue:
		issue, err := c.api.IssueForBranch(ctx, a.BranchName)
		if err != nil {
			c.fail(err, "Error fetching Jira issue", "")
			return
		}
		c.post(createpr.UpdateIssue{Issue: issue})
	case createpr.FetchUsersRequest:
		ctx, release := c.common.Cancellations().Track(ctx, a.AbortKey)
		defer release()
		users, err := c.api.FetchUsers(ctx, a.Site, a.Query)
		if err != nil {
			c.fail(err, "Error fetching users", a.Nonce)
			return
		}
		c.post(createpr.FetchUsersResponse{Users: users, Nonce: a.Nonce})
	case createpr.SubmitCreateRequest:
		c.submit(ctx, a)
	case createpr.OpenDiff:
		if err := c.api.OpenDiff(ctx, a.FileDiff); err != nil {
			c.fail(err, "Error opening diff", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}

// submit creates the pull request, then transitions the linked issue. The
// response goes out before the transition, so a transition failure is
// reported without the request nonce.
func (c *CreatePullRequestController) submit(ctx context.Context, a createpr.SubmitCreateRequest) {
	pr, err := c.api.CreatePullRequest(ctx, CreatePullRequestInput{
		Repo:              a.Repo,
		Site:              a.Site,
		Reviewers:         a.Reviewers,
		Title:             a.Title,
		Summary:           a.Summary,
		SourceBranch:      a.SourceBranch,
		DestinationBranch: a.DestinationBranch,
		PushLocalChanges:  a.PushLocalChanges,
		CloseSourceBranch: a.CloseSourceBranch,
	})
	if err != nil {
		c.fail(err, "Error creating pull request", a.Nonce)
		return
	}
	c.post(createpr.SubmitResponse{PR: pr, Nonce: a.Nonce})
	c.common.Emit(c.ScreenDetails(), eventlog.EventPRCreated, "pull request created",
		eventlog.WithSubject(a.Site.FullName()))

	if a.Issue == nil || a.Transition == nil {
		return
	}
	if err := c.api.TransitionIssue(ctx, *a.Issue, *a.Transition); err != nil {
		c.fail(err, "Pull request created but the issue could not be transitioned", "")
	}
}
