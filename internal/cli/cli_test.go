package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/manifest"
)

const defaultsPath = "../manifest/testdata/valid-defaults.yaml"

// resetFlags restores every flag to its default so commands can run more
// than once in one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// setupHome points the CLI at an empty home directory.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("TWEAKS_HOME", home)
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "C")
	return home
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestList(t *testing.T) {
	setupHome(t)
	out := mustExecute(t, "list", "--no-env", "--defaults", defaultsPath)

	for _, want := range []string{"General", "Other", "UI", "Ungrouped", "Display Red View", "8 tweaks in 4 sections"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "internal_build_number") {
		t.Error("hidden tweak listed")
	}
}

func TestList_JSON(t *testing.T) {
	setupHome(t)

	var tweaks []map[string]any
	out := mustExecute(t, "list", "--json", "--no-env", "--defaults", defaultsPath)
	if err := json.Unmarshal([]byte(out), &tweaks); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(tweaks) != 8 {
		t.Errorf("got %d tweaks, want 8", len(tweaks))
	}

	out = mustExecute(t, "list", "--json", "--all", "--no-env", "--defaults", defaultsPath)
	if err := json.Unmarshal([]byte(out), &tweaks); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(tweaks) != 9 {
		t.Errorf("got %d tweaks with --all, want 9", len(tweaks))
	}
}

func TestSetGetReset(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			setupHome(t)
			common := []string{"--no-env", "--defaults", defaultsPath, "--overrides-backend", backend}
			run := func(args ...string) string { return mustExecute(t, append(args, common...)...) }

			if out := run("set", "red_view_alpha_component", "0.5"); !strings.Contains(out, "Set red_view_alpha_component = 0.5") {
				t.Errorf("set output = %q", out)
			}
			if out := run("get", "red_view_alpha_component"); out != "0.5\n" {
				t.Errorf("get after set = %q, want 0.5", out)
			}

			var view map[string]any
			json.Unmarshal([]byte(run("get", "red_view_alpha_component", "--json")), &view)
			if view["overridden"] != true || view["source"] != "overrides" || view["title"] != "Red View Alpha Component" {
				t.Errorf("get --json = %v", view)
			}

			if out := run("reset", "red_view_alpha_component"); !strings.Contains(out, "now 1") {
				t.Errorf("reset output = %q", out)
			}
			if out := run("get", "red_view_alpha_component"); out != "1\n" {
				t.Errorf("get after reset = %q, want 1", out)
			}
			if out := run("reset", "red_view_alpha_component"); !strings.Contains(out, "not overridden") {
				t.Errorf("second reset output = %q", out)
			}
		})
	}
}

func TestSet_Kinds(t *testing.T) {
	setupHome(t)
	common := []string{"--no-env", "--defaults", defaultsPath}

	mustExecute(t, append([]string{"set", "brand_new", "12", "--kind", "text"}, common...)...)
	var view map[string]any
	json.Unmarshal([]byte(mustExecute(t, append([]string{"get", "brand_new", "--json"}, common...)...)), &view)
	if view["kind"] != "text" || view["value"] != "12" {
		t.Errorf("explicit kind ignored: %v", view)
	}

	mustExecute(t, append([]string{"set", "inferred", "true"}, common...)...)
	json.Unmarshal([]byte(mustExecute(t, append([]string{"get", "inferred", "--json"}, common...)...)), &view)
	if view["kind"] != "bool" {
		t.Errorf("inferred kind = %v, want bool", view["kind"])
	}
}

func TestSet_Rejected(t *testing.T) {
	setupHome(t)
	common := []string{"--no-env", "--defaults", defaultsPath}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"read-only", []string{"set", "api_environment", "staging"}, coordinator.ErrReadOnly},
		{"kind mismatch", []string{"set", "display_red_view", "12", "--kind", "number"}, coordinator.ErrKindMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append(tt.args, common...)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := execute(t, "", append([]string{"set", "display_red_view", "maybe"}, common...)...); err == nil {
		t.Error("unparseable bool accepted")
	}
}

func TestSet_NoMutableSource(t *testing.T) {
	home := setupHome(t)
	corrupt := filepath.Join(home, "broken.yaml")
	os.WriteFile(corrupt, []byte("a: [unclosed\n"), 0600)

	out, err := execute(t, "", "set", "display_red_view", "false",
		"--no-env", "--defaults", defaultsPath, "--overrides-path", corrupt)
	if err != nil {
		t.Fatalf("set without a mutable source should exit cleanly: %v", err)
	}
	if !strings.Contains(out, "No Mutable Configurations Found") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "warning:") {
		t.Errorf("skipped source not reported: %q", out)
	}
}

func TestGet_Unknown(t *testing.T) {
	setupHome(t)
	_, err := execute(t, "", "get", "some_nonexisting_tweak", "--no-env", "--defaults", defaultsPath)
	if !errors.Is(err, coordinator.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEnvLayer(t *testing.T) {
	setupHome(t)
	t.Setenv("TWEAKS_TWEAK_RED_VIEW_ALPHA_COMPONENT", "0.25")

	if out := mustExecute(t, "get", "red_view_alpha_component", "--defaults", defaultsPath); out != "0.25\n" {
		t.Errorf("env value = %q, want 0.25", out)
	}
	if out := mustExecute(t, "get", "red_view_alpha_component", "--no-env", "--defaults", defaultsPath); out != "1\n" {
		t.Errorf("--no-env value = %q, want 1", out)
	}
}

func TestEnvFile(t *testing.T) {
	home := setupHome(t)
	envFile := filepath.Join(home, "dev.env")
	if err := os.WriteFile(envFile, []byte("TWEAKS_TWEAK_DISPLAY_YELLOW_VIEW=true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if out := mustExecute(t, "get", "display_yellow_view", "--defaults", defaultsPath, "--env-file", envFile); out != "true\n" {
		t.Errorf("env file value = %q, want true", out)
	}
	if out := mustExecute(t, "get", "display_yellow_view", "--defaults", defaultsPath); out != "false\n" {
		t.Errorf("value without env file = %q, want false", out)
	}
}

func TestSources(t *testing.T) {
	setupHome(t)
	var infos []coordinator.LayerInfo
	out := mustExecute(t, "sources", "--json", "--defaults", defaultsPath)
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(infos) != 3 {
		t.Fatalf("got %d sources, want 3: %+v", len(infos), infos)
	}
	if infos[0].Name != "overrides" || infos[1].Name != "env" || infos[2].Name != "defaults:valid-defaults" {
		t.Errorf("sources = %+v", infos)
	}

	if out := mustExecute(t, "sources", "--defaults", defaultsPath); !strings.Contains(out, "PRIORITY") {
		t.Errorf("table output = %q", out)
	}
}

func TestEdit(t *testing.T) {
	setupHome(t)
	common := []string{"--no-env", "--defaults", defaultsPath}
	out, err := execute(t, "q\n", append([]string{"edit"}, common...)...)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "1) API Environment = production") {
		t.Errorf("menu = %q", out)
	}
}

func TestValidate(t *testing.T) {
	setupHome(t)
	out := mustExecute(t, "validate", defaultsPath)
	if !strings.Contains(out, "[ OK ] Valid manifest: 9 tweaks") {
		t.Errorf("output = %q", out)
	}

	out, err := execute(t, "", "validate", defaultsPath, "../manifest/testdata/invalid-missing-value.yaml")
	if err == nil {
		t.Fatal("invalid manifest accepted")
	}
	if !strings.Contains(out, "[FAIL]") || !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("output = %q, err = %v", out, err)
	}

	if _, err := execute(t, "", "validate", "../manifest/testdata/unsupported-format.yaml"); err == nil {
		t.Error("unsupported format accepted")
	}
}

func TestExport(t *testing.T) {
	setupHome(t)
	common := []string{"--no-env", "--defaults", defaultsPath}
	mustExecute(t, append([]string{"set", "display_red_view", "false"}, common...)...)

	out := mustExecute(t, append([]string{"export"}, common...)...)
	tweaks, err := manifest.Parse([]byte(out))
	if err != nil {
		t.Fatalf("export is not a valid manifest: %v\n%s", err, out)
	}
	if len(tweaks) != 8 {
		t.Errorf("exported %d tweaks, want 8", len(tweaks))
	}
	for _, tw := range tweaks {
		if tw.Identifier == "display_red_view" {
			if b, _ := tw.Value.BoolValue(); b {
				t.Error("override not exported")
			}
			if tw.Title != "Display Red View" {
				t.Errorf("title = %q", tw.Title)
			}
		}
	}
}

func TestConfigSetGet(t *testing.T) {
	home := setupHome(t)
	mustExecute(t, "config", "set", "overrides.backend", "sqlite")
	if out := mustExecute(t, "config", "get", "overrides.backend"); out != "sqlite\n" {
		t.Errorf("config get = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
	if out := mustExecute(t, "config", "list"); !strings.Contains(out, "overrides.backend = sqlite") {
		t.Errorf("config list = %q", out)
	}

	mustExecute(t, "set", "x", "1", "--no-env")
	if _, err := os.Stat(filepath.Join(home, "overrides.db")); err != nil {
		t.Errorf("sqlite backend from config not used: %v", err)
	}
}

func TestInitAndDoctor(t *testing.T) {
	home := setupHome(t)
	out := mustExecute(t, "init")
	if !strings.Contains(out, "created") {
		t.Errorf("init output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(home, "defaults.yaml")); err != nil {
		t.Fatalf("defaults.yaml not created: %v", err)
	}

	out = mustExecute(t, "doctor")
	if !strings.Contains(out, "[ OK ]") {
		t.Errorf("doctor output = %q", out)
	}

	_, err := execute(t, "", "doctor", "--defaults", "/nonexistent/defaults.yaml")
	if err == nil || !strings.Contains(err.Error(), "1 problem") {
		t.Errorf("doctor error = %v", err)
	}
}

func TestVersion(t *testing.T) {
	setupHome(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc", "today"
	if out := mustExecute(t, "version", "--short"); out != "1.2.3\n" {
		t.Errorf("version --short = %q", out)
	}
	var info map[string]string
	json.Unmarshal([]byte(mustExecute(t, "version", "--json")), &info)
	if info["commit"] != "abc" || info["manifest_format"] != manifest.CurrentFormat {
		t.Errorf("version --json = %v", info)
	}
}
