package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kastheco/atlas/config"
	"github.com/kastheco/atlas/config/eventlog"
	"github.com/kastheco/atlas/config/pmfstore"
)

// stores are the sqlite-backed analytics log and PMF tracker. Both live in
// the same database file.
type stores struct {
	events eventlog.Logger
	pmf    pmfstore.Tracker
}

func (s stores) Close() {
	if s.events != nil {
		_ = s.events.Close()
	}
	if s.pmf != nil {
		_ = s.pmf.Close()
	}
}

// openStores opens cfg's database. The PMF tracker is nil when the survey
// is disabled.
func openStores(cfg *config.Config) (stores, error) {
	path, err := cfg.ResolveDatabasePath()
	if err != nil {
		return stores{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stores{}, fmt.Errorf("create database dir: %w", err)
	}
	events, err := eventlog.NewSQLiteLogger(path)
	if err != nil {
		return stores{}, err
	}
	s := stores{events: events}
	if !cfg.IsPMFEnabled() {
		return s, nil
	}
	tracker, err := pmfstore.NewSQLiteTracker(path)
	if err != nil {
		s.Close()
		return stores{}, err
	}
	s.pmf = tracker
	return s, nil
}
