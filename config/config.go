package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kastheco/atlas/log"
	"github.com/kastheco/atlas/model"
)

const (
	ConfigFileName = "config.json"
	dbFileName     = "atlas.db"

	defaultAwaitTimeout = 30 * time.Second
)

// GetConfigDir returns ~/.config/atlas. ATLAS_CONFIG_DIR overrides it.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("ATLAS_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "atlas"), nil
}

// Config represents the application configuration
type Config struct {
	// TelemetryEnabled controls whether crash reporting via Sentry is active.
	// Defaults to true when not set.
	TelemetryEnabled *bool `json:"telemetry_enabled,omitempty"`
	// AwaitTimeoutMs bounds how long the UI waits for a reply to a request.
	AwaitTimeoutMs int `json:"await_timeout_ms"`
	// DatabasePath is the sqlite file holding analytics events and PMF state.
	// Empty means atlas.db in the config directory.
	DatabasePath string `json:"database_path,omitempty"`
	// PMFEnabled controls whether the product-market-fit banner may be shown.
	PMFEnabled *bool `json:"pmf_enabled,omitempty"`
	// KnownLinks maps link ids the UI may reference to their URLs. Entries
	// override the built-in set.
	KnownLinks map[string]string `json:"known_links,omitempty"`
	// BranchTemplate and BranchPrefixes seed the start work screen.
	BranchTemplate string   `json:"branch_template,omitempty"`
	BranchPrefixes []string `json:"branch_prefixes,omitempty"`
	// JiraMCPURL is the Atlassian MCP endpoint used for Jira calls. When
	// empty, JiraMCPCommand is spawned as a stdio MCP server instead.
	JiraMCPURL     string   `json:"jira_mcp_url,omitempty"`
	JiraMCPCommand []string `json:"jira_mcp_command,omitempty"`
	// Settings holds the user-editable values shown on the settings screen.
	Settings map[string]any `json:"settings,omitempty"`
	// JiraSites and BitbucketSites are the sites the user logged in to.
	// Credentials are never stored here.
	JiraSites      []model.SiteInfo `json:"jira_sites,omitempty"`
	BitbucketSites []model.SiteInfo `json:"bitbucket_sites,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	trueVal := true
	return &Config{
		AwaitTimeoutMs: int(defaultAwaitTimeout / time.Millisecond),
		PMFEnabled:     &trueVal,
		BranchTemplate: "{{prefix}}{{issueKey}}-{{summary}}",
		BranchPrefixes: []string{"feature/", "bugfix/", "hotfix/"},
		Settings:       map[string]any{},
	}
}

// IsTelemetryEnabled returns whether Sentry telemetry is enabled.
// Defaults to true when the field is not set.
func (c *Config) IsTelemetryEnabled() bool {
	if c.TelemetryEnabled == nil {
		return true
	}
	return *c.TelemetryEnabled
}

// IsPMFEnabled defaults to true when the field is not set.
func (c *Config) IsPMFEnabled() bool {
	if c.PMFEnabled == nil {
		return true
	}
	return *c.PMFEnabled
}

// AwaitTimeout returns the request timeout, falling back to the default for
// unset or non-positive values.
func (c *Config) AwaitTimeout() time.Duration {
	if c.AwaitTimeoutMs <= 0 {
		return defaultAwaitTimeout
	}
	return time.Duration(c.AwaitTimeoutMs) * time.Millisecond
}

// ResolveDatabasePath returns DatabasePath or the default location.
func (c *Config) ResolveDatabasePath() (string, error) {
	if c.DatabasePath != "" {
		return c.DatabasePath, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// ApplySettings sets every key in changes and deletes every key in removes.
// It returns the keys that actually changed, sorted.
func (c *Config) ApplySettings(changes map[string]any, removes []string) []string {
	if c.Settings == nil {
		c.Settings = map[string]any{}
	}
	var touched []string
	for k, v := range changes {
		c.Settings[k] = v
		touched = append(touched, k)
	}
	for _, k := range removes {
		if _, ok := c.Settings[k]; ok {
			delete(c.Settings, k)
			touched = append(touched, k)
		}
	}
	sort.Strings(touched)
	return touched
}

// AddSite records site, replacing any site with the same key.
func (c *Config) AddSite(site model.SiteInfo) {
	list := c.sitesFor(site.Product)
	for i, s := range *list {
		if s.Key() == site.Key() {
			(*list)[i] = site
			return
		}
	}
	*list = append(*list, site)
}

// RemoveSite forgets the site with site's key. It reports whether one was removed.
func (c *Config) RemoveSite(site model.SiteInfo) bool {
	list := c.sitesFor(site.Product)
	for i, s := range *list {
		if s.Key() == site.Key() {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Config) sitesFor(p model.Product) *[]model.SiteInfo {
	if p == model.ProductBitbucket {
		return &c.BitbucketSites
	}
	return &c.JiraSites
}

// LoadConfig reads config.json from the config directory, creating it with
// defaults on first run, then overlays config.toml.
func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}
	return LoadConfigFrom(configDir)
}

// LoadConfigFrom is LoadConfig rooted at configDir.
func LoadConfigFrom(configDir string) *Config {
	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			defaultCfg := DefaultConfig()
			if saveErr := saveConfigTo(defaultCfg, configDir); saveErr != nil {
				log.WarningLog.Printf("failed to save default config: %v", saveErr)
			}
			overlayTOML(defaultCfg, filepath.Join(configDir, TOMLConfigFileName))
			return defaultCfg
		}

		log.WarningLog.Printf("failed to get config file: %v", err)
		return DefaultConfig()
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		log.ErrorLog.Printf("failed to parse config file: %v", err)
		return DefaultConfig()
	}

	overlayTOML(config, filepath.Join(configDir, TOMLConfigFileName))
	return config
}

// overlayTOML applies config.toml on top of cfg. TOML wins for every key it sets.
func overlayTOML(cfg *Config, tomlPath string) {
	tc, err := LoadTOMLConfigFrom(tomlPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarningLog.Printf("failed to load TOML config: %v", err)
		}
		return
	}
	if tc.Telemetry != nil {
		cfg.TelemetryEnabled = tc.Telemetry
	}
	if tc.AwaitTimeout != "" {
		d, err := time.ParseDuration(tc.AwaitTimeout)
		if err != nil {
			log.WarningLog.Printf("ignoring await_timeout %q: %v", tc.AwaitTimeout, err)
		} else {
			cfg.AwaitTimeoutMs = int(d / time.Millisecond)
		}
	}
	if tc.Database != "" {
		cfg.DatabasePath = tc.Database
	}
	if tc.PMF != nil {
		cfg.PMFEnabled = tc.PMF
	}
	if len(tc.Links) > 0 {
		if cfg.KnownLinks == nil {
			cfg.KnownLinks = map[string]string{}
		}
		for k, v := range tc.Links {
			cfg.KnownLinks[k] = v
		}
	}
	if tc.Branches.Template != "" {
		cfg.BranchTemplate = tc.Branches.Template
	}
	if len(tc.Branches.Prefixes) > 0 {
		cfg.BranchPrefixes = tc.Branches.Prefixes
	}
	if tc.Jira.MCPURL != "" {
		cfg.JiraMCPURL = tc.Jira.MCPURL
	}
	if len(tc.Jira.Command) > 0 {
		cfg.JiraMCPCommand = tc.Jira.Command
	}
}

func saveConfigTo(config *Config, configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveConfigTo writes config.json to configDir.
func SaveConfigTo(config *Config, configDir string) error {
	return saveConfigTo(config, configDir)
}

// SaveConfig writes config.json to the config directory.
func SaveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return saveConfigTo(config, configDir)
}
