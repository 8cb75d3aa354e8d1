// Package jira reaches Jira through the Atlassian MCP server. It covers the
// calls the webview controllers need: issue lookup, transitions, assignment
// and JQL search.
package jira

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/kastheco/atlas/model"
)

// MCPCaller is the subset of mcpclient.Client that Client needs.
type MCPCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcpclient.ToolResult, error)
}

// Client issues Jira operations against one cloud site.
type Client struct {
	caller  MCPCaller
	cloudID string
	site    model.SiteInfo
}

// NewClient creates a Client bound to the site with the given cloud id.
func NewClient(caller MCPCaller, cloudID string, site model.SiteInfo) *Client {
	return &Client{caller: caller, cloudID: cloudID, site: site}
}

// Site returns the site this client talks to.
func (c *Client) Site() model.SiteInfo { return c.site }

// ResolveCloudID finds the cloud id of the site served at host.
func ResolveCloudID(ctx context.Context, caller MCPCaller, host string) (string, error) {
	var resources []resourceResponse
	if err := call(ctx, caller, toolAccessibleResources, map[string]any{}, &resources); err != nil {
		return "", err
	}
	for _, r := range resources {
		u, err := url.Parse(r.URL)
		if err != nil {
			continue
		}
		if strings.EqualFold(u.Host, host) {
			return r.ID, nil
		}
	}
	return "", fmt.Errorf("no accessible Atlassian site for host %s", host)
}

// GetIssue fetches an issue with its available transitions.
func (c *Client) GetIssue(ctx context.Context, key string) (model.MinimalIssue, error) {
	var resp issueResponse
	if err := c.call(ctx, toolGetIssue, map[string]any{"issueIdOrKey": key}, &resp); err != nil {
		return model.MinimalIssue{}, fmt.Errorf("get issue %s: %w", key, err)
	}
	issue := c.toIssue(resp)
	transitions, err := c.GetTransitions(ctx, key)
	if err != nil {
		return model.MinimalIssue{}, err
	}
	issue.Transitions = transitions
	return issue, nil
}

// GetTransitions lists the transitions currently available on an issue.
func (c *Client) GetTransitions(ctx context.Context, key string) ([]model.Transition, error) {
	var resp transitionsResponse
	if err := c.call(ctx, toolGetTransitions, map[string]any{"issueIdOrKey": key}, &resp); err != nil {
		return nil, fmt.Errorf("get transitions %s: %w", key, err)
	}
	out := make([]model.Transition, 0, len(resp.Transitions))
	for _, t := range resp.Transitions {
		out = append(out, model.Transition{ID: t.ID, Name: t.Name, To: toStatus(t.To)})
	}
	return out, nil
}

// TransitionIssue applies the transition with the given id.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string) error {
	args := map[string]any{
		"issueIdOrKey": key,
		"transition":   map[string]string{"id": transitionID},
	}
	if err := c.call(ctx, toolTransitionIssue, args, nil); err != nil {
		return fmt.Errorf("transition %s: %w", key, err)
	}
	return nil
}

// AssignIssue sets the assignee. An empty accountID unassigns.
func (c *Client) AssignIssue(ctx context.Context, key, accountID string) error {
	var assignee any
	if accountID != "" {
		assignee = map[string]string{"accountId": accountID}
	}
	args := map[string]any{
		"issueIdOrKey": key,
		"fields":       map[string]any{"assignee": assignee},
	}
	if err := c.call(ctx, toolEditIssue, args, nil); err != nil {
		return fmt.Errorf("assign %s: %w", key, err)
	}
	return nil
}

// CurrentUser returns the account the MCP session is authenticated as.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var resp userInfoResponse
	if err := call(ctx, c.caller, toolUserInfo, map[string]any{}, &resp); err != nil {
		return model.User{}, fmt.Errorf("current user: %w", err)
	}
	return model.User{
		AccountID:   resp.AccountID,
		DisplayName: resp.Name,
		Email:       resp.Email,
		AvatarURL:   resp.Picture,
	}, nil
}

// SearchIssues runs a JQL query. Transitions are not populated.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) ([]model.MinimalIssue, error) {
	args := map[string]any{"jql": jql}
	if maxResults > 0 {
		args["maxResults"] = maxResults
	}
	var resp searchResponse
	if err := c.call(ctx, toolSearchJQL, args, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", jql, err)
	}
	out := make([]model.MinimalIssue, 0, len(resp.Issues))
	for _, r := range resp.Issues {
		out = append(out, c.toIssue(r))
	}
	return out, nil
}

// IssuesByKey fetches the issues with the given keys in one search.
func (c *Client) IssuesByKey(ctx context.Context, keys []string) ([]model.MinimalIssue, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return c.SearchIssues(ctx, "key in ("+strings.Join(keys, ",")+")", len(keys))
}

// TransitionAndAssign assigns the issue to the current user, then applies
// the transition unless the issue already sits in its target status. It
// returns the status the issue ends in.
func (c *Client) TransitionAndAssign(ctx context.Context, issue model.MinimalIssue, t model.Transition) (model.Status, error) {
	me, err := c.CurrentUser(ctx)
	if err != nil {
		return model.Status{}, err
	}
	if issue.Assignee == nil || issue.Assignee.AccountID != me.AccountID {
		if err := c.AssignIssue(ctx, issue.Key, me.AccountID); err != nil {
			return model.Status{}, err
		}
	}
	if t.To.ID != "" && t.To.ID == issue.Status.ID {
		return issue.Status, nil
	}
	if err := c.TransitionIssue(ctx, issue.Key, t.ID); err != nil {
		return model.Status{}, err
	}
	return t.To, nil
}

var issueKeyPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-[0-9]+\b`)

// ExtractIssueKeys returns the distinct Jira issue keys mentioned in texts,
// in first-seen order.
func ExtractIssueKeys(texts ...string) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, text := range texts {
		for _, k := range issueKeyPattern.FindAllString(text, -1) {
			if seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func (c *Client) call(ctx context.Context, tool string, args map[string]any, out any) error {
	args["cloudId"] = c.cloudID
	return call(ctx, c.caller, tool, args, out)
}

func call(ctx context.Context, caller MCPCaller, tool string, args map[string]any, out any) error {
	res, err := caller.CallTool(ctx, tool, args)
	if err != nil {
		return err
	}
	return mcpclient.DecodeResult(tool, res, out)
}

func (c *Client) toIssue(r issueResponse) model.MinimalIssue {
	issue := model.MinimalIssue{
		Key:     r.Key,
		ID:      r.ID,
		Summary: r.Fields.Summary,
		Status:  toStatus(r.Fields.Status),
		IssueType: model.IssueType{
			ID:      r.Fields.IssueType.ID,
			Name:    r.Fields.IssueType.Name,
			IconURL: r.Fields.IssueType.IconURL,
		},
		Site: c.site,
	}
	if r.Fields.Assignee != nil {
		u := toUser(*r.Fields.Assignee)
		issue.Assignee = &u
	}
	if c.site.BaseURL != "" {
		issue.URL = strings.TrimRight(c.site.BaseURL, "/") + "/browse/" + r.Key
	}
	return issue
}

func toStatus(s statusResponse) model.Status {
	return model.Status{ID: s.ID, Name: s.Name, Category: s.StatusCategory.Key}
}

func toUser(u userResponse) model.User {
	return model.User{
		AccountID:   u.AccountID,
		DisplayName: u.DisplayName,
		Email:       u.EmailAddress,
		AvatarURL:   u.AvatarURLs["48x48"],
	}
}
