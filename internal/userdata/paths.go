package userdata

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tweaks-labs/tweaks/internal/branding"
)

// File names inside the home directory.
const (
	ConfigFile        = "config.yaml"
	DefaultsFile      = "defaults.yaml"
	OverridesFile     = "overrides.yaml"
	OverridesDatabase = "overrides.db"
)

// Permission constants.
const (
	DirPermSecure  os.FileMode = 0700
	FilePermSecure os.FileMode = 0600
	FilePermNormal os.FileMode = 0644
)

// Home returns the tweaks home directory.
// It checks the TWEAKS_HOME environment variable first,
// then falls back to ~/.tweaks.
func Home() (string, error) {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, branding.HomeDir()), nil
}

// ConfigPath returns the path to config.yaml.
func ConfigPath() (string, error) {
	return inHome(ConfigFile)
}

// DefaultsPath returns the path to the default tweaks manifest.
func DefaultsPath() (string, error) {
	return inHome(DefaultsFile)
}

// OverridesPath returns the default overrides location for a store backend:
// overrides.db for "sqlite", overrides.yaml otherwise.
func OverridesPath(backend string) (string, error) {
	if backend == "sqlite" {
		return inHome(OverridesDatabase)
	}
	return inHome(OverridesFile)
}

func inHome(name string) (string, error) {
	root, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
