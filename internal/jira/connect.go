package jira

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/mcpclient"
	"github.com/kastheco/atlas/log"
)

// ErrNotConfigured is returned when no Jira MCP server is configured or detected.
var ErrNotConfigured = errors.New("no Jira MCP server configured")

// ServerConfig picks the MCP server from cfg, falling back to one declared
// in repoDir's .mcp.json or settingsDir.
func ServerConfig(cfg *config.Config, repoDir, settingsDir string) (MCPServerConfig, error) {
	switch {
	case cfg.JiraMCPURL != "":
		return MCPServerConfig{Type: "http", URL: cfg.JiraMCPURL}, nil
	case len(cfg.JiraMCPCommand) > 0:
		return MCPServerConfig{Type: "stdio", Command: cfg.JiraMCPCommand[0], Args: cfg.JiraMCPCommand[1:]}, nil
	}
	if detected, ok := DetectMCP(repoDir, settingsDir); ok {
		return detected, nil
	}
	return MCPServerConfig{}, ErrNotConfigured
}

// Connect opens and initializes an MCP session to the server. HTTP servers
// use the cached OAuth token when one is present and unexpired.
func Connect(ctx context.Context, server MCPServerConfig) (*mcpclient.Client, error) {
	var transport mcpclient.Transport
	switch server.Type {
	case "http":
		transport = mcpclient.NewHTTPTransport(server.URL, cachedToken())
	case "stdio":
		t, err := mcpclient.NewStdioTransport(server.Command, server.Args, envList(server.Env))
		if err != nil {
			return nil, err
		}
		transport = t
	default:
		return nil, fmt.Errorf("unknown MCP transport %q", server.Type)
	}

	client, err := mcpclient.NewClient(transport)
	if err != nil {
		return nil, err
	}
	if err := client.Initialize(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func cachedToken() string {
	path, err := mcpclient.TokenPath()
	if err != nil {
		return ""
	}
	tok, err := mcpclient.LoadToken(path)
	if err != nil {
		return ""
	}
	if tok.IsExpired() {
		hint := "atlas jira login"
		if tok.CanRefresh() {
			hint = "atlas jira refresh"
		}
		log.WarningLog.Printf("cached Jira OAuth token expired at %s, run %s", tok.ExpiresAt, hint)
		return ""
	}
	return tok.AccessToken
}

func envList(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
