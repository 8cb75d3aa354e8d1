// Package pmfstore persists the product-market-fit survey state so the
// banner does not reappear once the user has answered or opted out.
package pmfstore

import (
	"time"

	"github.com/kastheco/atlas/config/pmffsm"
)

// DefaultSnooze is how long a "later" dismissal hides the banner.
const DefaultSnooze = 14 * 24 * time.Hour

// Record is the persisted survey state of one profile.
type Record struct {
	Status     pmffsm.Status `json:"status"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ShownCount int           `json:"shown_count"`
}

// Tracker reads and advances the survey state.
type Tracker interface {
	Get() (Record, error)
	Apply(event pmffsm.Event) (Record, error)
	ShouldShow(now time.Time) (bool, error)
	Close() error
}
