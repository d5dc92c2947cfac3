package config

import (
	"os"
	"path/filepath"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load attempts to load the configuration.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil // No config file found, return defaults
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	// 1. Variable override path
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	// 2. Environment override
	if envPath := os.Getenv("QUIPSHOT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// 3. Local run directory (dev mode)
	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".quipshotrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	// 4. XDG Config Path
	home, _ := os.UserHomeDir()
	xdgPath := filepath.Join(home, ".config", "quipshot", "config.rc")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	// Fallback names
	xdgPath = filepath.Join(home, ".config", "quipshot", "quipshot.rc")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	return ""
}

// DefaultSavePath returns the preferred location for writing configuration.
func DefaultSavePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quipshot", "config.rc")
}
