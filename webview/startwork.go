package webview

import (
	"context"
	"fmt"
	"sync"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/startwork"
	"github.com/kastheco/atlas/model"
)

// StartWorkController drives the start work screen.
type StartWorkController struct {
	screen
	api      StartWorkAPI
	template string
	prefixes []string

	mu    sync.Mutex
	issue model.MinimalIssue
}

// StartWorkOption configures a StartWorkController.
type StartWorkOption func(*StartWorkController)

// WithBranchTemplate sets the branch name template offered to the UI.
func WithBranchTemplate(template string) StartWorkOption {
	return func(c *StartWorkController) { c.template = template }
}

// WithBranchPrefixes sets the branch prefixes offered to the UI.
func WithBranchPrefixes(prefixes []string) StartWorkOption {
	return func(c *StartWorkController) { c.prefixes = prefixes }
}

func NewStartWorkController(poster MessagePoster, api StartWorkAPI, common *CommonHandler, issue model.MinimalIssue, opts ...StartWorkOption) *StartWorkController {
	c := &StartWorkController{screen: newScreen(poster, common), api: api, issue: issue}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StartWorkController) current() model.MinimalIssue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issue
}

func (c *StartWorkController) Title() string {
	return fmt.Sprintf("Start work on %s", c.current().Key)
}

func (c *StartWorkController) ScreenDetails() ScreenDetails {
	site := c.current().Site
	return ScreenDetails{ID: ScreenStartWork, Site: &site, Product: model.ProductJira}
}

func (c *StartWorkController) Update(factoryData any) {
	issue, ok := factoryData.(model.MinimalIssue)
	if !ok {
		seedMismatch(ScreenStartWork, factoryData)
		return
	}
	c.mu.Lock()
	c.issue = issue
	c.mu.Unlock()
	c.invalidate(context.Background())
}

func (c *StartWorkController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		issue, err := c.api.GetIssue(ctx, c.current())
		if err != nil {
			c.fail(err, "Error fetching issue", "")
			return false
		}
		repos, err := c.api.Repositories(ctx)
		if err != nil {
			c.fail(err, "Error fetching repositories", "")
			return false
		}
		c.mu.Lock()
		c.issue = issue
		c.mu.Unlock()
		c.post(startwork.Init{
			Issue:          issue,
			RepoData:       repos,
			CustomTemplate: c.template,
			CustomPrefixes: c.prefixes,
		})
		return true
	})
}

func (c *StartWorkController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case startwork.StartRequest:
		c.start(ctx, a)
	case startwork.OpenSettings:
		if err := c.api.OpenSettings(ctx); err != nil {
			c.fail(err, "Error opening settings", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}

// start runs the enabled steps in order. A failed transition stops the
// request before any branch is touched.
func (c *StartWorkController) start(ctx context.Context, a startwork.StartRequest) {
	issue := c.current()
	resp := startwork.StartWorkResponse{Nonce: a.Nonce}

	if a.TransitionIssueEnabled {
		status, err := c.api.TransitionAndAssign(ctx, issue, a.Transition)
		if err != nil {
			c.fail(err, "Error transitioning issue", a.Nonce)
			return
		}
		resp.TransistionStatus = status.Name
		c.mu.Lock()
		c.issue.Status = status
		c.mu.Unlock()
	}

	if a.BranchSetupEnabled {
		branch, err := c.api.CreateOrCheckoutBranch(ctx, a.WorkspaceRepo, a.TargetBranch, a.SourceBranch, a.Upstream)
		if err != nil {
			c.fail(err, "Error setting up branch", a.Nonce)
			return
		}
		resp.Branch = branch.Name
		if branch.Upstream != "" {
			resp.Upstream = a.Upstream
		}
	}

	c.post(resp)
	c.common.Emit(c.ScreenDetails(), eventlog.EventStartWork, "work started",
		eventlog.WithSubject(issue.Key),
		eventlog.WithDetail(fmt.Sprintf(`{"transition":%t,"branch":%t}`, a.TransitionIssueEnabled, a.BranchSetupEnabled)))
}
