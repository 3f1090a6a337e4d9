// Package settings persists the console's non-secret configuration as YAML.
// The session token itself lives in the OS keyring (see credentials).
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultServer     = "http://localhost:8080"
	DefaultCookieName = "token"
	DefaultPageSize   = 10

	fileName = "console.yaml"
	dirName  = "clandestine"
)

type Settings struct {
	Server     string `yaml:"server"`
	CookieName string `yaml:"cookie_name,omitempty"`
	PageSize   int    `yaml:"page_size,omitempty"`
}

// Defaults returns the settings used before anything has been saved.
func Defaults() Settings {
	return Settings{
		Server:     DefaultServer,
		CookieName: DefaultCookieName,
		PageSize:   DefaultPageSize,
	}
}

func (s Settings) withDefaults() Settings {
	d := Defaults()
	if strings.TrimSpace(s.Server) == "" {
		s.Server = d.Server
	}
	s.Server = strings.TrimRight(s.Server, "/")
	if s.CookieName == "" {
		s.CookieName = d.CookieName
	}
	if s.PageSize <= 0 {
		s.PageSize = d.PageSize
	}
	return s
}

// DefaultPath returns the settings file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads path. A missing file yields Defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s.withDefaults(), nil
}

// Save writes s to path, creating the directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	data, err := yaml.Marshal(s.withDefaults())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
