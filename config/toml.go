package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const TOMLConfigFileName = "config.toml"

// TOMLConfig is the hand-edited overlay in config.toml.
type TOMLConfig struct {
	Telemetry    *bool             `toml:"telemetry,omitempty"`
	AwaitTimeout string            `toml:"await_timeout,omitempty"`
	Database     string            `toml:"database,omitempty"`
	PMF          *bool             `toml:"pmf,omitempty"`
	Links        map[string]string `toml:"links,omitempty"`
	Branches     TOMLBranches      `toml:"branches"`
	Jira         TOMLJira          `toml:"jira"`
}

type TOMLBranches struct {
	Template string   `toml:"template,omitempty"`
	Prefixes []string `toml:"prefixes,omitempty"`
}

type TOMLJira struct {
	MCPURL  string   `toml:"mcp_url,omitempty"`
	Command []string `toml:"command,omitempty"`
}

// LoadTOMLConfig reads config.toml from the config directory. It returns
// (nil, nil) when the file does not exist.
func LoadTOMLConfig() (*TOMLConfig, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	tc, err := LoadTOMLConfigFrom(filepath.Join(dir, TOMLConfigFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return tc, err
}

// LoadTOMLConfigFrom parses the TOML file at path.
func LoadTOMLConfigFrom(path string) (*TOMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tc TOMLConfig
	if _, err := toml.Decode(string(data), &tc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &tc, nil
}

// SaveTOMLConfigTo writes tc to path, creating parent directories.
func SaveTOMLConfigTo(tc *TOMLConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(tc); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
