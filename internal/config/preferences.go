package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// RecentWorkspace is one entry of the recently opened list.
type RecentWorkspace struct {
	Path       string    `yaml:"path" json:"path"`
	LastOpened time.Time `yaml:"last_opened" json:"lastOpened"`
}

// Preferences is the per-user file shared by every workspace.
type Preferences struct {
	RecentlyOpened []RecentWorkspace `yaml:"recently_opened"`
}

// DefaultPreferencesPath returns the preferences file for this OS.
func DefaultPreferencesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "blog-writer.yml"
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "blog-writer.yml")
	}
	return filepath.Join(home, ".blog-writer.yml")
}

// LoadPreferences reads path. A missing file yields empty preferences.
func LoadPreferences(path string) (Preferences, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Preferences{}, nil
		}
		return Preferences{}, err
	}
	var p Preferences
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// SavePreferences writes p to path, creating parent directories.
func SavePreferences(path string, p Preferences) error {
	b, err := yaml.Marshal(&p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Touch moves path to the front of the recent list and trims it to
// MaxRecentWorkspaces entries.
func (p *Preferences) Touch(path string, now time.Time) {
	recent := []RecentWorkspace{{Path: path, LastOpened: now}}
	for _, r := range p.RecentlyOpened {
		if r.Path != path {
			recent = append(recent, r)
		}
	}
	if len(recent) > MaxRecentWorkspaces {
		recent = recent[:MaxRecentWorkspaces]
	}
	p.RecentlyOpened = recent
}
