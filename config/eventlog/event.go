package eventlog

import "time"

// EventKind identifies the type of analytics event.
type EventKind string

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Link and feedback events.
const (
	EventExternalLinkOpened EventKind = "external_link_opened"
	EventLinkCopied         EventKind = "link_copied"
	EventFeedbackSubmitted  EventKind = "feedback_submitted"
	EventJiraIssueOpened    EventKind = "jira_issue_opened"
)

// PMF survey events.
const (
	EventPMFBannerShown    EventKind = "pmf_banner_shown"
	EventPMFSurveyOpened   EventKind = "pmf_survey_opened"
	EventPMFSubmitted      EventKind = "pmf_submitted"
	EventPMFDismissedLater EventKind = "pmf_dismissed_later"
	EventPMFDismissedNever EventKind = "pmf_dismissed_never"
)

// Screen events.
const (
	EventScreenViewed     EventKind = "screen_viewed"
	EventRequestCancelled EventKind = "request_cancelled"
	EventStartWork        EventKind = "start_work"
	EventIssueCreated     EventKind = "issue_created"
	EventPRCreated        EventKind = "pr_created"
	EventPRMerged         EventKind = "pr_merged"
	EventUIError          EventKind = "ui_error"
)

// Event is a single analytics entry.
type Event struct {
	ID        int64
	EventID   string // uuid, minted on Emit when empty
	Kind      EventKind
	Timestamp time.Time
	Screen    string
	Site      string
	Product   string
	Subject   string // link id, link type, issue key...
	Message   string
	Detail    string // JSON-encoded extra data
	Level     string // info, warn, error
}
