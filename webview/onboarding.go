package webview

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/onboarding"
)

// OnboardingController drives the first-run onboarding screen.
type OnboardingController struct {
	screen
	api      OnboardingAPI
	isRemote bool
}

// NewOnboardingController builds the controller. isRemote tells the UI the
// host runs in a remote workspace, where browser-based login is unavailable.
func NewOnboardingController(poster MessagePoster, api OnboardingAPI, common *CommonHandler, isRemote bool) *OnboardingController {
	return &OnboardingController{screen: newScreen(poster, common), api: api, isRemote: isRemote}
}

func (c *OnboardingController) Title() string { return "Getting started" }

func (c *OnboardingController) ScreenDetails() ScreenDetails {
	return ScreenDetails{ID: ScreenOnboarding}
}

func (c *OnboardingController) Update(any) {
	c.invalidate(context.Background())
}

func (c *OnboardingController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(ctx context.Context) bool {
		sites, err := c.api.Sites(ctx)
		if err != nil {
			c.fail(err, "Error loading sites", "")
			return false
		}
		c.post(onboarding.Init{JiraSites: sites.Jira, BitbucketSites: sites.Bitbucket, IsRemote: c.isRemote})
		return true
	})
}

func (c *OnboardingController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	case onboarding.Login:
		sites, err := c.api.Login(ctx, a.SiteInfo, a.AuthInfo)
		if err != nil {
			c.fail(err, "Authentication error", a.Nonce)
			return
		}
		c.post(onboarding.SitesUpdate{JiraSites: sites.Jira, BitbucketSites: sites.Bitbucket})
		c.post(onboarding.LoginResponse{Nonce: a.Nonce})
	case onboarding.Logout:
		sites, err := c.api.Logout(ctx, a.SiteInfo)
		if err != nil {
			c.fail(err, "Error logging out", "")
			return
		}
		c.post(onboarding.SitesUpdate{JiraSites: sites.Jira, BitbucketSites: sites.Bitbucket})
	case onboarding.SaveSettings:
		if err := c.api.SaveSettings(ctx, a.Changes, a.Removes); err != nil {
			c.fail(err, "Error saving settings", "")
		}
	case onboarding.OpenSettings:
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
