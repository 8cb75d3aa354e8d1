package model

// Status is a Jira workflow status.
type Status struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"statusCategory"`
}

// Transition moves an issue from its current status to To.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// IssueType is a Jira issue type.
type IssueType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// MinimalIssue is the Jira issue shape the webviews need.
type MinimalIssue struct {
	Key         string       `json:"key"`
	ID          string       `json:"id"`
	Summary     string       `json:"summary"`
	Status      Status       `json:"status"`
	IssueType   IssueType    `json:"issuetype"`
	Assignee    *User        `json:"assignee,omitempty"`
	Transitions []Transition `json:"transitions"`
	Site        SiteInfo     `json:"siteDetails"`
	URL         string       `json:"url,omitempty"`
}

// FindTransition returns the transition with the given id.
func (i MinimalIssue) FindTransition(id string) (Transition, bool) {
	for _, t := range i.Transitions {
		if t.ID == id {
			return t, true
		}
	}
	return Transition{}, false
}
