//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tweaks-labs/tweaks/internal/config"
	"github.com/tweaks-labs/tweaks/internal/session"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // TWEAKS_HOME: config.yaml, defaults.yaml, overrides
	DefaultsDir string // app-shipped defaults manifests
}

// setupTestEnv creates isolated temp directories and sets environment variables
// so all tweaks operations are sandboxed. The env vars are restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:     t.TempDir(),
		DefaultsDir: t.TempDir(),
	}
	t.Setenv("TWEAKS_HOME", env.HomeDir)
	return env
}

// writeManifest writes a defaults manifest and returns its path.
func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing manifest %s: %v", name, err)
	}
	return path
}

// openSession loads config from the sandboxed home and opens a session.
func openSession(t *testing.T, environ []string) *session.Session {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("decoding settings: %v", err)
	}
	opts := session.OptionsFrom(s)
	opts.Environ = environ
	sess := session.Open(opts, nil)
	t.Cleanup(func() { sess.Close() })
	return sess
}

const appDefaults = `format_version: "1.0.0"
tweaks:
  display_red_view:
    title: Display Red View
    group: UI
    value: true
  red_view_alpha_component:
    title: Red View Alpha Component
    group: UI
    value: 1.0
  change_tweaks_button_label_text:
    title: Change Tweaks Button Label Text
    group: General
    value: Change Configuration
  api_environment:
    title: API Environment
    group: General
    value: production
    read_only: true
`

const experimentDefaults = `format_version: "1.0"
tweaks:
  display_red_view:
    title: Red View Experiment
    value: false
  experiment_enabled:
    group: Experiments
    value: true
`
