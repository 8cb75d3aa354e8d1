package webview

import (
	"context"
	"sync"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/settings"
)

// SettingsController drives the settings screen.
type SettingsController struct {
	screen
	api SettingsAPI

	mu     sync.Mutex
	target settings.Target
}

// NewSettingsController edits target; an empty target means the user scope.
func NewSettingsController(poster MessagePoster, api SettingsAPI, common *CommonHandler, target settings.Target) *SettingsController {
	if target == "" {
		target = settings.TargetUser
	}
	return &SettingsController{screen: newScreen(poster, common), api: api, target: target}
}

func (c *SettingsController) currentTarget() settings.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *SettingsController) Title() string { return "Atlassian settings" }

func (c *SettingsController) ScreenDetails() ScreenDetails {
	return ScreenDetails{ID: ScreenSettings}
}

func (c *SettingsController) Update(factoryData any) {
	switch t := factoryData.(type) {
	case settings.Target:
		c.mu.Lock()
		c.target = t
		c.mu.Unlock()
	case nil:
	default:
		seedMismatch(ScreenSettings, factoryData)
		return
	}
	c.invalidate(context.Background())
}

func (c *SettingsController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		target := c.currentTarget()
		cfg, err := c.api.Config(ctx, target)
		if err != nil {
			c.fail(err, "Error loading configuration", "")
			return false
		}
		sites, err := c.api.Sites(ctx)
		if err != nil {
			c.fail(err, "Error loading sites", "")
			return false
		}
		c.post(settings.Init{
			Config:         cfg,
			JiraSites:      sites.Jira,
			BitbucketSites: sites.Bitbucket,
			Target:         target,
		})
		return true
	})
}

func (c *SettingsController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case settings.Login:
		sites, err := c.api.Login(ctx, a.SiteInfo, a.AuthInfo)
		if err != nil {
			c.fail(err, "Authentication error", "")
			return
		}
		c.post(settings.SitesUpdate{JiraSites: sites.Jira, BitbucketSites: sites.Bitbucket})
	case settings.Logout:
		sites, err := c.api.Logout(ctx, a.SiteInfo)
		if err != nil {
			c.fail(err, "Error logging out", "")
			return
		}
		c.post(settings.SitesUpdate{JiraSites: sites.Jira, BitbucketSites: sites.Bitbucket})
	case settings.SaveSettings:
		target := a.Target
		if target == "" {
			target = c.currentTarget()
		}
		cfg, err := c.api.SaveSettings(ctx, target, a.Changes, a.Removes)
		if err != nil {
			c.fail(err, "Error saving settings", "")
			return
		}
		c.post(settings.ConfigUpdate{Config: cfg, Target: target})
	case settings.OpenJSON:
		target := a.Target
		if target == "" {
			target = c.currentTarget()
		}
		if err := c.api.OpenJSON(ctx, target); err != nil {
			c.fail(err, "Error opening settings file", "")
		}
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
