package webview

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/prdetails"
	"github.com/kastheco/atlas/model"
)

// future is the result of a fetch running on its own goroutine.
type future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func async[T any](ctx context.Context, fn func(context.Context) (T, error)) *future[T] {
	f := &future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

func (f *future[T]) wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// PullRequestController drives the pull request details screen.
type PullRequestController struct {
	screen
	api PullRequestAPI

	mu    sync.Mutex
	pr    model.PullRequest
	tasks []model.Task
}

// NewPullRequestController shows pr.
func NewPullRequestController(poster MessagePoster, api PullRequestAPI, common *CommonHandler, pr model.PullRequest) *PullRequestController {
	return &PullRequestController{screen: newScreen(poster, common), api: api, pr: pr}
}

func (c *PullRequestController) current() model.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pr
}

func (c *PullRequestController) Title() string {
	pr := c.current()
	return fmt.Sprintf("Pull request #%s", pr.ID)
}

func (c *PullRequestController) ScreenDetails() ScreenDetails {
	site := c.current().Site.Details
	return ScreenDetails{ID: ScreenPullRequestDetails, Site: &site, Product: model.ProductBitbucket}
}

func (c *PullRequestController) Update(factoryData any) {
	pr, ok := factoryData.(model.PullRequest)
	if !ok {
		seedMismatch(ScreenPullRequestDetails, factoryData)
		return
	}
	c.mu.Lock()
	c.pr = pr
	c.tasks = nil
	c.mu.Unlock()
	c.invalidate(context.Background())
}

func (c *PullRequestController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), c.load)
}

// load fetches the pull request and then fans out. Each fetch posts its own
// update as soon as it lands and reports its own failure. Tasks are folded
// into the comments once everything else has settled.
func (c *PullRequestController) load(ctx context.Context) bool {
	seed := c.current()
	var (
		pr     model.PullRequest
		user   model.User
		branch string
	)
	head, hctx := errgroup.WithContext(ctx)
	head.Go(func() (err error) {
		pr, err = c.api.GetPullRequest(hctx, seed)
		return err
	})
	head.Go(func() (err error) {
		user, err = c.api.CurrentUser(hctx, seed.Site.Details)
		return err
	})
	head.Go(func() (err error) {
		branch, err = c.api.CurrentBranch(hctx, seed)
		return err
	})
	if err := head.Wait(); err != nil {
		c.fail(err, "Error fetching pull request", "")
		return false
	}
	c.mu.Lock()
	c.pr = pr
	c.mu.Unlock()
	c.post(prdetails.Init{PR: pr, CurrentUser: user, CurrentBranch: branch})

	comments := async(ctx, func(ctx context.Context) ([]model.Comment, error) { return c.api.GetComments(ctx, pr) })
	commits := async(ctx, func(ctx context.Context) ([]model.Commit, error) { return c.api.GetCommits(ctx, pr) })

	var (
		g     errgroup.Group
		tasks *future[[]model.Task]
	)
	g.Go(func() error {
		statuses, err := c.api.GetBuildStatuses(ctx, pr)
		if err != nil {
			c.fail(err, "Error fetching build statuses", "")
			return nil
		}
		c.post(prdetails.UpdateBuildStatuses{BuildStatuses: statuses})
		return nil
	})
	g.Go(func() error {
		strategies, err := c.api.GetMergeStrategies(ctx, pr)
		if err != nil {
			c.fail(err, "Error fetching merge strategies", "")
			return nil
		}
		c.post(prdetails.UpdateMergeStrategies{MergeStrategies: strategies})
		return nil
	})
	g.Go(func() error {
		all, err := comments.wait()
		if err != nil {
			c.fail(err, "Error fetching comments", "")
			return nil
		}
		c.postComments(all, "")

		tasks = async(ctx, func(ctx context.Context) ([]model.Task, error) { return c.api.GetTasks(ctx, pr) })
		g.Go(func() error {
			diffs, err := c.api.GetFileDiffs(ctx, pr, all)
			if err != nil {
				c.fail(err, "Error fetching file changes", "")
				return nil
			}
			c.post(prdetails.UpdateFileDiffs{FileDiffs: diffs})
			return nil
		})
		return nil
	})
	g.Go(func() error {
		cs, err := commits.wait()
		if err != nil {
			c.fail(err, "Error fetching commits", "")
			return nil
		}
		c.post(prdetails.UpdateCommits{Commits: cs})

		// Issue keys are also mined from comments; a failed comment fetch
		// leaves only the commits to search.
		all, _ := comments.wait()
		g.Go(func() error {
			issues, err := c.api.GetRelatedJiraIssues(ctx, pr, cs, all)
			if err != nil {
				c.fail(err, "Error fetching related Jira issues", "")
				return nil
			}
			c.post(prdetails.UpdateRelatedJiraIssues{RelatedIssues: issues})
			return nil
		})
		g.Go(func() error {
			issues, err := c.api.GetRelatedBitbucketIssues(ctx, pr, cs, all)
			if err != nil {
				c.fail(err, "Error fetching related Bitbucket issues", "")
				return nil
			}
			c.post(prdetails.UpdateRelatedBitbucketIssues{RelatedIssues: issues})
			return nil
		})
		return nil
	})
	_ = g.Wait()

	if tasks == nil {
		return true
	}
	ts, err := tasks.wait()
	if err != nil {
		c.fail(err, "Error fetching tasks", "")
		return true
	}
	all, _ := comments.wait()
	c.mu.Lock()
	c.tasks = ts
	c.mu.Unlock()
	c.post(prdetails.UpdateTasks{Tasks: ts})
	c.postComments(all, "")
	return true
}

// postComments attaches the known tasks to all and posts it split into page
// and inline comments.
func (c *PullRequestController) postComments(all []model.Comment, nonce string) {
	c.mu.Lock()
	tasks := c.tasks
	c.mu.Unlock()
	page, inline := SplitComments(attachTasks(all, tasks))
	c.post(prdetails.UpdateComments{Comments: page, InlineComments: inline, Nonce: nonce})
}

func (c *PullRequestController) postTasks(res TasksResult, nonce string) {
	c.mu.Lock()
	c.tasks = res.Tasks
	c.mu.Unlock()
	c.post(prdetails.UpdateTasks{Tasks: res.Tasks, Nonce: nonce})
	c.postComments(res.Comments, "")
}

func (c *PullRequestController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	pr := c.current()
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case prdetails.FetchUsersRequest:
		ctx, release := c.common.Cancellations().Track(ctx, a.AbortKey)
		defer release()
		users, err := c.api.FetchUsers(ctx, a.Site, a.Query)
		if err != nil {
			c.fail(err, "Error fetching users", a.Nonce)
			return
		}
		c.post(prdetails.FetchUsersResponse{Users: users, Nonce: a.Nonce})
	case prdetails.UpdateSummaryRequest:
		summary, err := c.api.UpdateSummary(ctx, pr, a.Text)
		if err != nil {
			c.fail(err, "Error updating summary", a.Nonce)
			return
		}
		c.post(prdetails.UpdateSummary{Summary: summary, Nonce: a.Nonce})
	case prdetails.UpdateTitleRequest:
		title, err := c.api.UpdateTitle(ctx, pr, a.Text)
		if err != nil {
			c.fail(err, "Error updating title", a.Nonce)
			return
		}
		c.post(prdetails.UpdateTitle{Title: title, Nonce: a.Nonce})
	case prdetails.SetReviewers:
		reviewers, err := c.api.UpdateReviewers(ctx, pr, a.Reviewers)
		if err != nil {
			c.fail(err, "Error updating reviewers", a.Nonce)
			return
		}
		c.post(prdetails.UpdateReviewers{Reviewers: reviewers, Nonce: a.Nonce})
	case prdetails.SetApprovalStatus:
		status, err := c.api.UpdateApprovalStatus(ctx, pr, a.Status)
		if err != nil {
			c.fail(err, "Error updating approval status", a.Nonce)
			return
		}
		c.post(prdetails.UpdateApprovalStatus{Status: status, Nonce: a.Nonce})
	case prdetails.CheckoutBranch:
		branch, err := c.api.Checkout(ctx, pr)
		if err != nil {
			c.fail(err, "Error checking out branch", a.Nonce)
			return
		}
		c.post(prdetails.CheckedOut{BranchName: branch, Nonce: a.Nonce})
	case prdetails.PostComment:
		all, err := c.api.PostComment(ctx, pr, a.RawText, a.ParentID, a.Inline)
		if err != nil {
			c.fail(err, "Error posting comment", a.Nonce)
			return
		}
		c.postComments(all, a.Nonce)
	case prdetails.EditComment:
		all, err := c.api.EditComment(ctx, pr, a.RawContent, a.CommentID)
		if err != nil {
			c.fail(err, "Error editing comment", a.Nonce)
			return
		}
		c.postComments(all, a.Nonce)
	case prdetails.DeleteComment:
		all, err := c.api.DeleteComment(ctx, pr, a.Comment)
		if err != nil {
			c.fail(err, "Error deleting comment", a.Nonce)
			return
		}
		c.postComments(all, a.Nonce)
	case prdetails.AddTask:
		res, err := c.api.AddTask(ctx, pr, a.Content, a.CommentID)
		if err != nil {
			c.fail(err, "Error adding task", a.Nonce)
			return
		}
		c.postTasks(res, a.Nonce)
	case prdetails.EditTask:
		res, err := c.api.EditTask(ctx, pr, a.Task)
		if err != nil {
			c.fail(err, "Error editing task", a.Nonce)
			return
		}
		c.postTasks(res, a.Nonce)
	case prdetails.DeleteTask:
		res, err := c.api.DeleteTask(ctx, pr, a.Task)
		if err != nil {
			c.fail(err, "Error deleting task", a.Nonce)
			return
		}
		c.postTasks(res, a.Nonce)
	case prdetails.OpenDiff:
		if err := c.api.OpenDiff(ctx, a.FileDiff); err != nil {
			c.fail(err, "Error opening diff", "")
		}
	case prdetails.Merge:
		status, err := c.api.Merge(ctx, pr, a.MergeStrategy, a.CommitMessage, a.CloseSourceBranch, a.Issues)
		if err != nil {
			c.fail(err, "Error merging pull request", a.Nonce)
			return
		}
		c.post(prdetails.UpdateMergeStatus{Status: status, Nonce: a.Nonce})
		c.common.Emit(c.ScreenDetails(), eventlog.EventPRMerged, "pull request merged",
			eventlog.WithSubject(pr.Site.FullName()+"#"+pr.ID))
		c.invalidate(ctx)
	case prdetails.OpenBuildStatus:
		if err := c.api.OpenBuildStatus(ctx, a.BuildStatus); err != nil {
			c.fail(err, "Error opening build status", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
