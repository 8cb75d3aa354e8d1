package jira_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/internal/jira"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMCP(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestDetect_ProjectMCPJSON(t *testing.T) {
	dir := t.TempDir()
	writeMCP(t, dir, ".mcp.json", `{"mcpServers":{"atlassian":{"type":"http","url":"https://mcp.atlassian.com/v1/sse"}}}`)

	cfg, found := jira.DetectMCP(dir, "")
	assert.True(t, found)
	assert.Equal(t, "http", cfg.Type)
	assert.Equal(t, "https://mcp.atlassian.com/v1/sse", cfg.URL)
}

func TestDetect_StdioServer(t *testing.T) {
	dir := t.TempDir()
	writeMCP(t, dir, ".mcp.json", `{"mcpServers":{"jira-local":{"command":"npx","args":["-y","mcp-remote","https://mcp.atlassian.com/v1/sse"],"env":{"JIRA_SITE":"acme"}}}}`)

	cfg, found := jira.DetectMCP(dir, "")
	assert.True(t, found)
	assert.Equal(t, "stdio", cfg.Type)
	assert.Equal(t, "npx", cfg.Command)
	assert.Contains(t, cfg.Args, "mcp-remote")
	assert.Equal(t, "acme", cfg.Env["JIRA_SITE"])
}

func TestDetect_IgnoresOtherServers(t *testing.T) {
	dir := t.TempDir()
	writeMCP(t, dir, ".mcp.json", `{"mcpServers":{"clickup":{"type":"http","url":"https://mcp.clickup.com/mcp"}}}`)

	_, found := jira.DetectMCP(dir, "")
	assert.False(t, found)
}

func TestDetect_NotFound(t *testing.T) {
	_, found := jira.DetectMCP(t.TempDir(), "")
	assert.False(t, found)
}

func TestDetect_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeMCP(t, dir, ".mcp.json", `{"mcpServers":{"Atlassian-Prod":{"type":"http","url":"https://mcp.atlassian.com/v1/sse"}}}`)

	_, found := jira.DetectMCP(dir, "")
	assert.True(t, found)
}

func TestDetect_SkipsEntryWithoutURLOrCommand(t *testing.T) {
	dir := t.TempDir()
	writeMCP(t, dir, ".mcp.json", `{"mcpServers":{"atlassian":{"type":"sse"},"jira":{"url":"https://jira.example/mcp"}}}`)

	cfg, found := jira.DetectMCP(dir, "")
	require.True(t, found)
	assert.Equal(t, "https://jira.example/mcp", cfg.URL)
}

func TestDetect_FallbackToSettingsDir(t *testing.T) {
	repoDir := t.TempDir()
	settingsDir := t.TempDir()
	writeMCP(t, settingsDir, "settings.local.json", `{"mcpServers":{"atlassian":{"type":"http","url":"https://mcp.atlassian.com/v1/sse"}}}`)

	cfg, found := jira.DetectMCP(repoDir, settingsDir)
	assert.True(t, found)
	assert.Equal(t, "https://mcp.atlassian.com/v1/sse", cfg.URL)
}

func TestServerConfig(t *testing.T) {
	repoDir := t.TempDir()

	cfg := config.DefaultConfig()
	_, err := jira.ServerConfig(cfg, repoDir, "")
	assert.ErrorIs(t, err, jira.ErrNotConfigured)

	writeMCP(t, repoDir, ".mcp.json", `{"mcpServers":{"atlassian":{"url":"https://detected/mcp"}}}`)
	server, err := jira.ServerConfig(cfg, repoDir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://detected/mcp", server.URL)

	cfg.JiraMCPCommand = []string{"uvx", "mcp-atlassian"}
	server, err = jira.ServerConfig(cfg, repoDir, "")
	require.NoError(t, err)
	assert.Equal(t, jira.MCPServerConfig{Type: "stdio", Command: "uvx", Args: []string{"mcp-atlassian"}}, server)

	cfg.JiraMCPURL = "https://configured/mcp"
	server, err = jira.ServerConfig(cfg, repoDir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://configured/mcp", server.URL)
}
