package userdata

import (
	"fmt"
	"io"
	"os"

	"github.com/tweaks-labs/tweaks/internal/platform"
)

// Default content for config.yaml.
const defaultConfigContent = `# Tweaks CLI configuration.
# defaults_files:
#   - /path/to/app-defaults.yaml
overrides:
  backend: file
env:
  enabled: true
log:
  level: warn
# locale: it
# serve:
#   addr: 127.0.0.1:8420
`

// Default content for defaults.yaml.
const defaultDefaultsContent = `format_version: "1.0.0"
tweaks: {}
`

// Init creates the home directory with a starter config and an empty
// defaults manifest. It prints progress to w. Existing files are kept.
func Init(w io.Writer) error {
	root, err := Home()
	if err != nil {
		return err
	}
	if err := ensureDir(w, root); err != nil {
		return err
	}

	configPath, _ := ConfigPath()
	if err := ensureFile(w, configPath, defaultConfigContent, FilePermSecure); err != nil {
		return err
	}
	defaultsPath, _ := DefaultsPath()
	return ensureFile(w, defaultsPath, defaultDefaultsContent, FilePermNormal)
}

func ensureDir(w io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  exists  %s\n", path)
		return platform.EnsureDir(path, DirPermSecure)
	}
	if err := platform.EnsureDir(path, DirPermSecure); err != nil {
		return err
	}
	fmt.Fprintf(w, "  created %s\n", path)
	return nil
}

func ensureFile(w io.Writer, path, content string, perm os.FileMode) error {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  exists  %s\n", path)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := platform.Chmod(path, perm); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	fmt.Fprintf(w, "  created %s\n", path)
	return nil
}
