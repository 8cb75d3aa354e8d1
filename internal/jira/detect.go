package jira

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// mcpConfigFile represents the structure of .mcp.json or an editor settings.json.
type mcpConfigFile struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// serverEntry is a union of http and stdio server config fields.
type serverEntry struct {
	Type    string            `json:"type"`
	URL     string            `json:"url"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

// DetectMCP scans config files for an Atlassian or Jira MCP server.
// repoDir is the project root (checks .mcp.json).
// settingsDir is an editor config dir (checks settings.json, settings.local.json).
// Pass empty settingsDir to skip it.
func DetectMCP(repoDir, settingsDir string) (MCPServerConfig, bool) {
	if cfg, ok := scanFile(filepath.Join(repoDir, ".mcp.json")); ok {
		return cfg, true
	}
	if settingsDir == "" {
		return MCPServerConfig{}, false
	}
	for _, name := range []string{"settings.json", "settings.local.json"} {
		if cfg, ok := scanFile(filepath.Join(settingsDir, name)); ok {
			return cfg, true
		}
	}
	return MCPServerConfig{}, false
}

func isJiraServer(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "atlassian") || strings.Contains(lower, "jira")
}

func scanFile(path string) (MCPServerConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MCPServerConfig{}, false
	}

	var file mcpConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return MCPServerConfig{}, false
	}

	// Map order is random; sort so the same file always yields the same server.
	names := make([]string, 0, len(file.MCPServers))
	for name := range file.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !isJiraServer(name) {
			continue
		}

		var entry serverEntry
		if err := json.Unmarshal(file.MCPServers[name], &entry); err != nil {
			continue
		}

		cfg := MCPServerConfig{Env: entry.Env}
		if entry.Type == "http" || entry.URL != "" {
			cfg.Type = "http"
			cfg.URL = entry.URL
		} else if entry.Command != "" {
			cfg.Type = "stdio"
			cfg.Command = entry.Command
			cfg.Args = entry.Args
		} else {
			continue
		}

		return cfg, true
	}

	return MCPServerConfig{}, false
}
