package webview

import (
	"context"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/ipc/welcome"
)

// WelcomeController drives the welcome screen. It has no backend; every
// action other than refresh is a common one.
type WelcomeController struct {
	screen
}

func NewWelcomeController(poster MessagePoster, common *CommonHandler) *WelcomeController {
	return &WelcomeController{screen: newScreen(poster, common)}
}

func (c *WelcomeController) Title() string { return "Welcome to atlas" }

func (c *WelcomeController) ScreenDetails() ScreenDetails {
	return ScreenDetails{ID: ScreenWelcome}
}

func (c *WelcomeController) Update(any) {
	c.invalidate(context.Background())
}

func (c *WelcomeController) invalidate(ctx context.Context) {
	c.refresh(ctx, c.ScreenDetails(), func(context.Context) bool {
		c.post(welcome.Init{})
		return true
	})
}

func (c *WelcomeController) OnMessageReceived(ctx context.Context, a ipc.Action) {
	switch a.(type) {
	case ipc.Refresh:
		c.invalidate(ctx)
	default:
		if !ipc.IsCommonAction(a) {
			ipc.Unreachable(a)
		}
		c.handleCommon(ctx, c.ScreenDetails(), a)
	}
}
