package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/kastheco/atlas/model"
)

const (
	atlassianAuthURL  = "https://auth.atlassian.com/authorize"
	atlassianTokenURL = "https://auth.atlassian.com/oauth/token"
)

var defaultJiraScopes = []string{"read:jira-work", "write:jira-work", "read:jira-user", "offline_access"}

// issueGetter is the part of *jira.Client `jira issue` needs.
type issueGetter interface {
	GetIssue(ctx context.Context, key string) (model.MinimalIssue, error)
}

// executeJiraLogin runs the OAuth flow and caches the token at path.
func executeJiraLogin(ctx context.Context, cfg mcpclient.OAuthConfig, path string, openBrowser func(string) error) (*mcpclient.OAuthToken, error) {
	tok, err := mcpclient.OAuthFlow(ctx, cfg, openBrowser)
	if err != nil {
		return nil, fmt.Errorf("jira login: %w", err)
	}
	if err := mcpclient.SaveToken(path, tok); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return tok, nil
}

// executeJiraRefresh rotates the token cached at path and saves the result.
func executeJiraRefresh(ctx context.Context, path string) (*mcpclient.OAuthToken, error) {
	tok, err := mcpclient.LoadToken(path)
	if err != nil {
		return nil, fmt.Errorf("no cached Jira token, run atlas jira login: %w", err)
	}
	next, err := mcpclient.Refresh(ctx, tok)
	if err != nil {
		return nil, fmt.Errorf("jira %w", err)
	}
	if err := mcpclient.SaveToken(path, next); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return next, nil
}

// executeJiraIssue prints key's summary, status and transitions.
func executeJiraIssue(ctx context.Context, jc issueGetter, key string, w io.Writer) error {
	issue, err := jc.GetIssue(ctx, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s  %s\n", issue.Key, issue.Summary)
	fmt.Fprintf(w, "status:   %s\n", issue.Status.Name)
	if issue.Assignee != nil {
		fmt.Fprintf(w, "assignee: %s\n", issue.Assignee.DisplayName)
	}
	if len(issue.Transitions) > 0 {
		names := make([]string, 0, len(issue.Transitions))
		for _, t := range issue.Transitions {
			names = append(names, t.Name)
		}
		fmt.Fprintf(w, "next:     %s\n", strings.Join(names, ", "))
	}
	if issue.URL != "" {
		fmt.Fprintln(w, issue.URL)
	}
	return nil
}

// NewJiraCmd builds the `atlas jira` command tree.
func NewJiraCmd() *cobra.Command {
	jiraCmd := &cobra.Command{
		Use:   "jira",
		Short: "authenticate with and query Jira through the Atlassian MCP server",
	}

	var (
		clientID string
		scopes   []string
	)
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "authorize atlas in the browser and cache the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				return errors.New("--client-id is required")
			}
			path, err := mcpclient.TokenPath()
			if err != nil {
				return err
			}
			tok, err := executeJiraLogin(cmd.Context(), mcpclient.OAuthConfig{
				AuthURL:  atlassianAuthURL,
				TokenURL: atlassianTokenURL,
				ClientID: clientID,
				Scopes:   scopes,
			}, path, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ token saved to %s (expires %s)\n", path, tok.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	loginCmd.Flags().StringVar(&clientID, "client-id", "", "Atlassian OAuth app client id")
	loginCmd.Flags().StringSliceVar(&scopes, "scope", defaultJiraScopes, "OAuth scopes to request")
	jiraCmd.AddCommand(loginCmd)

	jiraCmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "exchange the cached refresh token for a new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := mcpclient.TokenPath()
			if err != nil {
				return err
			}
			tok, err := executeJiraRefresh(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ token refreshed (expires %s)\n", tok.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	})

	jiraCmd.AddCommand(&cobra.Command{
		Use:   "issue KEY",
		Short: "show an issue of the first logged-in Jira site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			configDir, err := config.GetConfigDir()
			if err != nil {
				return err
			}
			session, client, err := connectJira(cmd.Context(), cfg, ".", configDir)
			if err != nil {
				return err
			}
			defer session.Close()
			if client == nil {
				return fmt.Errorf("no Jira site logged in: %w", jira.ErrNotConfigured)
			}
			return executeJiraIssue(cmd.Context(), client, strings.ToUpper(args[0]), cmd.OutOrStdout())
		},
	})

	return jiraCmd
}
