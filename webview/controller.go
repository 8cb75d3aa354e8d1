// Package webview holds the host side of every webview screen: one
// controller per screen that turns inbound actions into calls on a backend
// API and posts the resulting messages back to the UI.
package webview

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
)

// ScreenID names a webview screen.
type ScreenID string

const (
	ScreenBitbucketIssue       ScreenID = "bitbucketIssueScreen"
	ScreenCreateBitbucketIssue ScreenID = "createBitbucketIssueScreen"
	ScreenCreatePullRequest    ScreenID = "createPullRequestScreen"
	ScreenPullRequestDetails   ScreenID = "pullRequestDetailsScreen"
	ScreenSettings             ScreenID = "settingsScreen"
	ScreenOnboarding           ScreenID = "onboardingScreen"
	ScreenStartWork            ScreenID = "startWorkScreen"
	ScreenPipelineSummary      ScreenID = "pipelineSummaryScreen"
	ScreenWelcome              ScreenID = "welcomeScreen"
)

// ScreenDetails identifies a screen and the site it shows, for telemetry.
type ScreenDetails struct {
	ID      ScreenID        `json:"id"`
	Site    *model.SiteInfo `json:"site,omitempty"`
	Product model.Product   `json:"product,omitempty"`
}

// SiteKey returns the site key, or "" when the screen has no site.
func (d ScreenDetails) SiteKey() string {
	if d.Site == nil {
		return ""
	}
	return d.Site.Key()
}

// MessagePoster delivers messages to the UI.
type MessagePoster interface {
	PostMessage(m ipc.Message) error
}

// Controller drives one screen.
type Controller interface {
	Title() string
	ScreenDetails() ScreenDetails
	// Update reseeds the controller with new host data and reloads the screen.
	Update(factoryData any)
	// OnMessageReceived handles one inbound action. It may be called
	// concurrently for different actions.
	OnMessageReceived(ctx context.Context, a ipc.Action)
}

// screen carries what every controller shares: the poster, the common
// handler and the refresh gate.
type screen struct {
	poster     MessagePoster
	common     *CommonHandler
	refreshing atomic.Bool
}

func newScreen(poster MessagePoster, common *CommonHandler) screen {
	if common == nil {
		common = NewCommonHandler(CommonDeps{})
	}
	return screen{poster: poster, common: common}
}

func (s *screen) post(m ipc.Message) {
	if err := s.poster.PostMessage(m); err != nil {
		log.ErrorLog.Printf("could not post %q: %v", m.MessageType(), err)
	}
}

// fail reports a collaborator failure to the UI. Cancellations were asked
// for by the UI, so they are only logged.
func (s *screen) fail(err error, title, nonce string) {
	if isCancellation(err) {
		log.WarningLog.Printf("%s: cancelled: %v", title, err)
		return
	}
	log.ErrorLog.Printf("%s: %v", title, err)
	s.post(ipc.ErrorMessage{Reason: ipc.FormatError(err, title), Nonce: nonce})
}

// refresh runs load unless a refresh is already in flight, in which case the
// request is dropped. After a successful load the PMF banner state is posted.
func (s *screen) refresh(ctx context.Context, details ScreenDetails, load func(context.Context) bool) {
	if !s.refreshing.CompareAndSwap(false, true) {
		log.InfoLog.Printf("%s: refresh already in progress, dropping request", details.ID)
		return
	}
	defer s.refreshing.Store(false)

	if !load(ctx) {
		return
	}
	s.common.ScreenViewed(details)
	s.common.PostPMFStatus(details, s.poster)
}

// handleCommon forwards a to the common handler, except refresh which the
// controller owns.
func (s *screen) handleCommon(ctx context.Context, details ScreenDetails, a ipc.Action) {
	s.common.OnMessageReceived(ctx, details, s.poster, a)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// seedMismatch logs factory data of the wrong type; the current seed stays.
func seedMismatch(id ScreenID, got any) {
	log.ErrorLog.Printf("%s: ignoring update with unexpected seed %T", id, got)
}
