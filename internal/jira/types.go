package jira

// MCPServerConfig holds a detected Atlassian MCP server configuration.
type MCPServerConfig struct {
	Type    string            // "http" or "stdio"
	URL     string            // for http type
	Command string            // for stdio type
	Args    []string          // for stdio type
	Env     map[string]string // for stdio type
}

// Tool names exposed by the Atlassian MCP server.
const (
	toolAccessibleResources = "getAccessibleAtlassianResources"
	toolUserInfo            = "atlassianUserInfo"
	toolGetIssue            = "getJiraIssue"
	toolGetTransitions      = "getTransitionsForJiraIssue"
	toolTransitionIssue     = "transitionJiraIssue"
	toolEditIssue           = "editJiraIssue"
	toolSearchJQL           = "searchJiraIssuesUsingJql"
)

type statusResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StatusCategory struct {
		Key string `json:"key"`
	} `json:"statusCategory"`
}

type userResponse struct {
	AccountID    string            `json:"accountId"`
	DisplayName  string            `json:"displayName"`
	EmailAddress string            `json:"emailAddress"`
	AvatarURLs   map[string]string `json:"avatarUrls"`
}

type issueResponse struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary   string         `json:"summary"`
		Status    statusResponse `json:"status"`
		IssueType struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			IconURL string `json:"iconUrl"`
		} `json:"issuetype"`
		Assignee *userResponse `json:"assignee"`
	} `json:"fields"`
}

type transitionResponse struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	To   statusResponse `json:"to"`
}

type transitionsResponse struct {
	Transitions []transitionResponse `json:"transitions"`
}

type searchResponse struct {
	Issues []issueResponse `json:"issues"`
}

type resourceResponse struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

type userInfoResponse struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
}
