// Package pmffsm is the lifecycle of the product-market-fit survey banner.
package pmffsm

import (
	"fmt"
	"time"
)

// Status represents where the user is in the survey lifecycle.
type Status string

const (
	StatusEligible       Status = "eligible"
	StatusBannerShown    Status = "banner_shown"
	StatusSurveyOpened   Status = "survey_opened"
	StatusSubmitted      Status = "submitted"
	StatusDismissedLater Status = "dismissed_later"
	StatusDismissedNever Status = "dismissed_never"
)

// Event represents a lifecycle transition trigger.
type Event string

const (
	ShowBanner   Event = "show_banner"
	OpenSurvey   Event = "open_survey"
	Submit       Event = "submit"
	DismissLater Event = "dismiss_later"
	DismissNever Event = "dismiss_never"
	Reset        Event = "reset"
)

// IsTerminal reports whether the banner must never be shown again from s
// without an explicit Reset.
func (s Status) IsTerminal() bool {
	return s == StatusSubmitted || s == StatusDismissedNever
}

// transitionTable defines all valid state transitions.
// Key: current status → event → new status. Reset is valid from anywhere.
var transitionTable = map[Status]map[Event]Status{
	StatusEligible: {
		ShowBanner: StatusBannerShown,
	},
	StatusBannerShown: {
		ShowBanner:   StatusBannerShown,
		OpenSurvey:   StatusSurveyOpened,
		Submit:       StatusSubmitted,
		DismissLater: StatusDismissedLater,
		DismissNever: StatusDismissedNever,
	},
	StatusSurveyOpened: {
		Submit:       StatusSubmitted,
		DismissLater: StatusDismissedLater,
		DismissNever: StatusDismissedNever,
	},
	StatusDismissedLater: {
		ShowBanner:   StatusBannerShown,
		DismissNever: StatusDismissedNever,
	},
	StatusSubmitted:      {},
	StatusDismissedNever: {},
}

// ApplyTransition returns the new status for the given current status and event.
// Returns an error if the transition is not valid.
func ApplyTransition(current Status, event Event) (Status, error) {
	events, ok := transitionTable[current]
	if !ok {
		return "", fmt.Errorf("no transitions defined for status %q", current)
	}
	if event == Reset {
		return StatusEligible, nil
	}
	next, ok := events[event]
	if !ok {
		return "", fmt.Errorf("invalid transition: %q + %q", current, event)
	}
	return next, nil
}

// ShouldShow reports whether the banner is due. A "later" dismissal snoozes
// the banner until snooze has passed since since.
func ShouldShow(current Status, since, now time.Time, snooze time.Duration) bool {
	switch current {
	case StatusEligible, StatusBannerShown:
		return true
	case StatusDismissedLater:
		return !now.Before(since.Add(snooze))
	}
	return false
}
