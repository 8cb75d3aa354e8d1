package webview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"

	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/config/pmffsm"
	"github.com/kastheco/atlas/config/pmfstore"
	"github.com/kastheco/atlas/internal/browser"
	"github.com/kastheco/atlas/ipc"
	"github.com/kastheco/atlas/log"
)

// KnownLinks maps link ids the UI may send in externalLink to URLs.
type KnownLinks map[string]string

// DefaultKnownLinks returns the built-in link table.
func DefaultKnownLinks() KnownLinks {
	return KnownLinks{
		"atlascodeRepo":          "https://bitbucket.org/atlassianlabs/atlascode",
		"atlascodeIssues":        "https://bitbucket.org/atlassianlabs/atlascode/issues",
		"atlascodeDocs":          "https://confluence.atlassian.com/display/BITBUCKET/Atlassian+for+VS+Code",
		"twitterLink":            "https://twitter.com/AtlassianDev",
		"bitbucketPipelinesDocs": "https://support.atlassian.com/bitbucket-cloud/docs/get-started-with-bitbucket-pipelines/",
		"jiraCloudSignup":        "https://www.atlassian.com/software/jira/free",
		"bitbucketCloudSignup":   "https://bitbucket.org/account/signup/",
		"privacyPolicy":          "https://www.atlassian.com/legal/privacy-policy",
	}
}

// Merge returns a copy of k with overrides applied.
func (k KnownLinks) Merge(overrides map[string]string) KnownLinks {
	out := make(KnownLinks, len(k)+len(overrides))
	for id, u := range k {
		out[id] = u
	}
	for id, u := range overrides {
		out[id] = u
	}
	return out
}

// Resolve returns the URL for id.
func (k KnownLinks) Resolve(id string) (string, bool) {
	u, ok := k[id]
	return u, ok
}

// URLOpener opens a URL outside the panel.
type URLOpener interface {
	OpenURL(url string) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// FeedbackSubmitter forwards feedback and survey answers.
type FeedbackSubmitter interface {
	SubmitFeedback(ctx context.Context, f ipc.FeedbackData) error
	SubmitPMF(ctx context.Context, answers ipc.PMFData) error
}

// JiraIssueOpener opens a Jira issue view by key.
type JiraIssueOpener interface {
	OpenJiraIssue(ctx context.Context, issueKey string) error
}

// BrowserOpener opens URLs in the default browser.
type BrowserOpener struct{}

func (BrowserOpener) OpenURL(url string) error { return browser.Open(url) }

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

var errNotConfigured = errors.New("not configured in this host")

// CommonDeps are the collaborators of a CommonHandler. Nil fields fall back
// to defaults: the built-in links, the system browser and clipboard, a no-op
// event log and a fresh cancellation manager. A nil PMF tracker disables the
// survey banner.
type CommonDeps struct {
	Links         KnownLinks
	Opener        URLOpener
	Clipboard     Clipboard
	Feedback      FeedbackSubmitter
	Issues        JiraIssueOpener
	PMF           pmfstore.Tracker
	Events        eventlog.Logger
	Cancellations *CancellationManager
	Now           func() time.Time
}

// CommonHandler handles the actions every screen accepts.
type CommonHandler struct {
	links     KnownLinks
	opener    URLOpener
	clipboard Clipboard
	feedback  FeedbackSubmitter
	issues    JiraIssueOpener
	pmf       pmfstore.Tracker
	events    eventlog.Logger
	cancels   *CancellationManager
	now       func() time.Time
}

// NewCommonHandler builds a handler from deps.
func NewCommonHandler(deps CommonDeps) *CommonHandler {
	h := &CommonHandler{
		links:     deps.Links,
		opener:    deps.Opener,
		clipboard: deps.Clipboard,
		feedback:  deps.Feedback,
		issues:    deps.Issues,
		pmf:       deps.PMF,
		events:    deps.Events,
		cancels:   deps.Cancellations,
		now:       deps.Now,
	}
	if h.links == nil {
		h.links = DefaultKnownLinks()
	}
	if h.opener == nil {
		h.opener = BrowserOpener{}
	}
	if h.clipboard == nil {
		h.clipboard = SystemClipboard{}
	}
	if h.events == nil {
		h.events = eventlog.NopLogger()
	}
	if h.cancels == nil {
		h.cancels = NewCancellationManager()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Cancellations returns the process-wide abort key registry.
func (h *CommonHandler) Cancellations() *CancellationManager { return h.cancels }

// Events returns the analytics sink.
func (h *CommonHandler) Events() eventlog.Logger { return h.events }

// OnMessageReceived handles a common action for the screen described by sd.
// Failures are reported through poster.
func (h *CommonHandler) OnMessageReceived(ctx context.Context, sd ScreenDetails, poster MessagePoster, a ipc.Action) {
	switch a := a.(type) {
	case ipc.Refresh:
		// Controllers handle refresh themselves.
	case ipc.ExternalLink:
		h.openLink(sd, poster, a)
	case ipc.CopyLink:
		if err := h.clipboard.WriteAll(a.URL); err != nil {
			h.fail(poster, err, "Error copying link")
			return
		}
		h.emit(sd, eventlog.EventLinkCopied, "link copied", eventlog.WithSubject(a.LinkType))
	case ipc.SubmitFeedback:
		if h.feedback == nil {
			h.fail(poster, fmt.Errorf("feedback: %w", errNotConfigured), "Error submitting feedback")
			return
		}
		if err := h.feedback.SubmitFeedback(ctx, a.Feedback); err != nil {
			h.fail(poster, err, "Error submitting feedback")
			return
		}
		h.emit(sd, eventlog.EventFeedbackSubmitted, "feedback submitted", eventlog.WithSubject(a.Feedback.Source))
	case ipc.OpenJiraIssue:
		if h.issues == nil {
			h.fail(poster, fmt.Errorf("open issue: %w", errNotConfigured), "Error opening issue")
			return
		}
		if err := h.issues.OpenJiraIssue(ctx, a.IssueOrKey); err != nil {
			h.fail(poster, err, "Error opening issue")
			return
		}
		h.emit(sd, eventlog.EventJiraIssueOpened, "jira issue opened", eventlog.WithSubject(a.IssueOrKey))
	case ipc.CancelRequest:
		if h.cancels.Cancel(a.AbortKey) {
			h.emit(sd, eventlog.EventRequestCancelled, "request cancelled", eventlog.WithSubject(a.AbortKey))
		} else {
			log.InfoLog.Printf("cancel: no request in flight for abort key %q", a.AbortKey)
		}
	case ipc.DismissPMFLater:
		h.advancePMF(sd, poster, pmffsm.DismissLater, eventlog.EventPMFDismissedLater)
	case ipc.DismissPMFNever:
		h.advancePMF(sd, poster, pmffsm.DismissNever, eventlog.EventPMFDismissedNever)
	case ipc.OpenPMFSurvey:
		h.advancePMF(sd, poster, pmffsm.OpenSurvey, eventlog.EventPMFSurveyOpened)
	case ipc.SubmitPMF:
		if h.feedback != nil {
			if err := h.feedback.SubmitPMF(ctx, a.PMFData); err != nil {
				h.fail(poster, err, "Error submitting survey")
				return
			}
		}
		detail, _ := json.Marshal(a.PMFData)
		h.advancePMF(sd, poster, pmffsm.Submit, eventlog.EventPMFSubmitted, eventlog.WithDetail(string(detail)))
	case ipc.SendAnalytics:
		detail, _ := json.Marshal(a.ErrorInfo)
		h.emit(sd, eventlog.EventUIError, a.ErrorInfo.Message,
			eventlog.WithSubject(a.ErrorInfo.Name),
			eventlog.WithDetail(string(detail)),
			eventlog.WithLevel("error"))
	default:
		ipc.Unreachable(a)
	}
}

func (h *CommonHandler) openLink(sd ScreenDetails, poster MessagePoster, a ipc.ExternalLink) {
	target := a.URL
	known := false
	if a.LinkID != "" {
		if u, ok := h.links.Resolve(a.LinkID); ok {
			target, known = u, true
		}
	}
	if target == "" {
		h.fail(poster, fmt.Errorf("unknown link id %q and no url given", a.LinkID), "Error opening link")
		return
	}
	if err := h.opener.OpenURL(target); err != nil {
		h.fail(poster, err, "Error opening link")
		return
	}
	if known {
		h.emit(sd, eventlog.EventExternalLinkOpened, "external link opened",
			eventlog.WithSubject(a.LinkID),
			eventlog.WithDetail(fmt.Sprintf(`{"source":%q}`, a.Source)))
	}
}

// PostPMFStatus tells the UI whether to show the survey banner. Showing it
// is recorded so the banner is not offered again after a dismissal.
func (h *CommonHandler) PostPMFStatus(sd ScreenDetails, poster MessagePoster) {
	show := false
	if h.pmf != nil {
		var err error
		show, err = h.pmf.ShouldShow(h.now())
		if err != nil {
			log.WarningLog.Printf("pmf: %v", err)
			show = false
		}
	}
	if show {
		if _, err := h.pmf.Apply(pmffsm.ShowBanner); err != nil {
			log.WarningLog.Printf("pmf: %v", err)
		} else {
			h.emit(sd, eventlog.EventPMFBannerShown, "pmf banner shown")
		}
	}
	if err := poster.PostMessage(ipc.PMFStatus{ShowPMF: show}); err != nil {
		log.ErrorLog.Printf("could not post pmfStatus: %v", err)
	}
}

func (h *CommonHandler) advancePMF(sd ScreenDetails, poster MessagePoster, ev pmffsm.Event, kind eventlog.EventKind, opts ...eventlog.EventOption) {
	if h.pmf == nil {
		log.InfoLog.Printf("pmf: tracker disabled, ignoring %s", ev)
		return
	}
	rec, err := h.pmf.Apply(ev)
	if err != nil {
		// An out-of-order survey action, e.g. a second dismissal from another panel.
		log.WarningLog.Printf("pmf: %v", err)
		return
	}
	h.emit(sd, kind, "pmf "+string(rec.Status), opts...)
	if err := poster.PostMessage(ipc.PMFStatus{ShowPMF: false}); err != nil {
		log.ErrorLog.Printf("could not post pmfStatus: %v", err)
	}
}

// ScreenViewed records that sd finished loading.
func (h *CommonHandler) ScreenViewed(sd ScreenDetails) {
	h.emit(sd, eventlog.EventScreenViewed, "screen viewed")
}

// Emit records an analytics event tagged with sd.
func (h *CommonHandler) Emit(sd ScreenDetails, kind eventlog.EventKind, message string, opts ...eventlog.EventOption) {
	h.emit(sd, kind, message, opts...)
}

func (h *CommonHandler) emit(sd ScreenDetails, kind eventlog.EventKind, message string, opts ...eventlog.EventOption) {
	base := []eventlog.EventOption{eventlog.WithScreen(string(sd.ID)), eventlog.WithSite(sd.SiteKey(), string(sd.Product))}
	ev := eventlog.NewEvent(kind, message, append(base, opts...)...)
	ev.Timestamp = h.now()
	h.events.Emit(ev)
}

func (h *CommonHandler) fail(poster MessagePoster, err error, title string) {
	log.ErrorLog.Printf("%s: %v", title, err)
	if perr := poster.PostMessage(ipc.ErrorMessage{Reason: ipc.FormatError(err, title)}); perr != nil {
		log.ErrorLog.Printf("could not post error: %v", perr)
	}
}
