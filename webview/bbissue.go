package webview

import (
	"context"
	"fmt"
	"sync"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/bbissue"
	"github.com/kastheco/atlas/model"
)

// BitbucketIssueController drives the Bitbucket issue viewer.
type BitbucketIssueController struct {
	screen
	api BitbucketIssueAPI

	mu    sync.Mutex
	issue model.BitbucketIssue
}

// NewBitbucketIssueController shows issue.
func NewBitbucketIssueController(poster MessagePoster, api BitbucketIssueAPI, common *CommonHandler, issue model.BitbucketIssue) *BitbucketIssueController {
	return &BitbucketIssueController{screen: newScreen(poster, common), api: api, issue: issue}
}

func (c *BitbucketIssueController) current() model.BitbucketIssue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue
}

func (c *BitbucketIssueController) Title() string {
	return fmt.Sprintf("Bitbucket issue #%d", c.current().ID)
}

func (c *BitbucketIssueController) ScreenDetails() ScreenDetails {
	site := c.current().Site.Details
	return ScreenDetails{ID: ScreenBitbucketIssue, Site: &site, Product: model.ProductBitbucket}
}

func (c *BitbucketIssueController) Update(factoryData any) {
	issue, ok := factoryData.(model.BitbucketIssue)
	if !ok {
		seedMismatch(ScreenBitbucketIssue, factoryData)
		return
	}
	c.mu.Lock()
	c.issue = issue
	c.mu.Unlock()
	c.invalidate(context.Background())
}

func (c *BitbucketIssueController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		issue, err := c.api.GetIssue(ctx, c.current())
		if err != nil {
			c.fail(err, "Error fetching issue", "")
			return false
		}
		c.mu.Lock()
		c.issue = issue
		c.mu.Unlock()
		c.post(bbissue.Init{Issue: issue})

		comments, err := c.api.GetComments(ctx, issue)
		if err != nil {
			c.fail(err, "Error fetching comments", "")
			return true
		}
		c.post(bbissue.InitComments{Comments: comments})
		return true
	})
}

func (c *BitbucketIssueController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case bbissue.UpdateStatusRequest:
		status, err := c.api.UpdateStatus(ctx, c.current(), a.Status)
		if err != nil {
			c.fail(err, "Error updating issue status", a.Nonce)
			return
		}
		c.mu.Lock()
		c.issue.State = status
		c.mu.Unlock()
		c.post(bbissue.UpdateStatusResponse{Status: status, Nonce: a.Nonce})
	case bbissue.AddCommentRequest:
		comments, err := c.api.PostComment(ctx, c.current(), a.Content)
		if err != nil {
			c.fail(err, "Error posting comment", a.Nonce)
			return
		}
		c.post(bbissue.UpdateComments{Comments: comments, Nonce: a.Nonce})
	case bbissue.FetchUsersRequest:
		ctx, release := c.common.Cancellations().Track(ctx, a.AbortKey)
		defer release()
		users, err := c.api.FetchUsers(ctx, c.current().Site, a.Query)
		if err != nil {
			c.fail(err, "Error fetching users", a.Nonce)
			return
		}
		c.post(bbissue.FetchUsersResponse{Users: users, Nonce: a.Nonce})
	case bbissue.AssignRequest:
		assignee, err := c.api.Assign(ctx, c.current(), a.AccountID)
		if err != nil {
			c.fail(err, "Error assigning issue", a.Nonce)
			return
		}
		c.mu.Lock()
		c.issue.Assignee = assignee
		c.mu.Unlock()
		c.post(bbissue.UpdateAssignee{Assignee: assignee, Nonce: a.Nonce})
	case bbissue.StartWork:
		if err := c.api.OpenStartWork(ctx, c.current()); err != nil {
			c.fail(err, "Error opening start work", "")
		}
	case bbissue.CreateJiraIssue:
		if err := c.api.CreateJiraIssue(ctx, c.current()); err != nil {
			c.fail(err, "Error creating Jira issue", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
