package webview

import (
	"context"
	"sync"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/createissue"
	"github.com/kastheco/atlas/model"
)

// CreateIssueController drives the create Bitbucket issue screen.
type CreateIssueController struct {
	screen
	api CreateIssueAPI

	mu   sync.Mutex
	site *model.BitbucketSite
}

// NewCreateIssueController preselects site when it is non-nil.
func NewCreateIssueController(poster MessagePoster, api CreateIssueAPI, common *CommonHandler, site *model.BitbucketSite) *CreateIssueController {
	return &CreateIssueController{screen: newScreen(poster, common), api: api, site: site}
}

func (c *CreateIssueController) Title() string { return "Create Bitbucket issue" }

func (c *CreateIssueController) ScreenDetails() ScreenDetails {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := ScreenDetails{ID: ScreenCreateBitbucketIssue, Product: model.ProductBitbucket}
	if c.site != nil {
		site := c.site.Details
		d.Site = &site
	}
	return d
}

func (c *CreateIssueController) Update(factoryData any) {
	site, ok := factoryData.(*model.BitbucketSite)
	if !ok {
		seedMismatch(ScreenCreateBitbucketIssue, factoryData)
		return
	}
	c.mu.Lock()
	c.site = site
	c.mu.Unlock()
	c.invalidate(context.Background())
}

func (c *CreateIssueController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		sites, err := c.api.Sites(ctx)
		if err != nil {
			c.fail(err, "Error fetching repositories", "")
			return false
		}
		c.mu.Lock()
		site := c.site
		if site == nil && len(sites) > 0 {
			site = &sites[0]
		}
		c.mu.Unlock()
		c.post(createissue.Init{Sites: sites, Site: site})
		return true
	})
}

func (c *CreateIssueController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case createissue.SubmitIssueRequest:
		issue, err := c.api.CreateIssue(ctx, a.Site, a.Title, a.Description, a.Kind, a.Priority)
		if err != nil {
			c.fail(err, "Error creating issue", a.Nonce)
			return
		}
		c.post(createissue.SubmitResponse{Issue: issue, Nonce: a.Nonce})
		c.common.Emit(c.ScreenDetails(), eventlog.EventIssueCreated, "bitbucket issue created",
			eventlog.WithSubject(a.Site.FullName()))
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
