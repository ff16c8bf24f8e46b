package userdata

import (
	"fmt"
	"io"
	"os"

	"github.com/tweaks-labs/tweaks/internal/manifest"
	"github.com/tweaks-labs/tweaks/internal/platform"
	"github.com/tweaks-labs/tweaks/internal/store"
)

// CheckOptions lists what the doctor inspects.
type CheckOptions struct {
	DefaultsFiles    []string
	OverridesBackend string
	OverridesPath    string
	// Fix creates missing directories and tightens loose permissions.
	Fix bool
}

// Check validates the home directory, the defaults manifests and the
// overrides store, printing one line per finding to w. It returns the
// number of problems left unfixed.
func Check(w io.Writer, opts CheckOptions) (int, error) {
	root, err := Home()
	if err != nil {
		return 0, err
	}

	problems := 0
	fmt.Fprintln(w, "Home check:")
	problems += checkDir(w, root, DirPermSecure, opts.Fix)
	configPath, _ := ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		fmt.Fprintf(w, "  [MISS] %s (run 'tweaks init' to create)\n", configPath)
	} else {
		fmt.Fprintf(w, "  [ OK ] %s exists\n", configPath)
	}

	fmt.Fprintln(w, "Defaults check:")
	if len(opts.DefaultsFiles) == 0 {
		fmt.Fprintln(w, "  [INFO] No defaults files configured")
	}
	for _, path := range opts.DefaultsFiles {
		problems += checkManifest(w, path)
	}

	fmt.Fprintln(w, "Overrides check:")
	problems += checkOverrides(w, opts)
	return problems, nil
}

func checkDir(w io.Writer, path string, perm os.FileMode, fix bool) int {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		if !fix {
			return 1
		}
		if err := platform.EnsureDir(path, perm); err != nil {
			fmt.Fprintf(w, "  [FAIL] Could not create %s: %v\n", path, err)
			return 1
		}
		fmt.Fprintf(w, "  [FIX ] Created %s with %o\n", path, perm)
		return 0
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return 1
	}
	if !info.IsDir() {
		fmt.Fprintf(w, "  [FAIL] %s exists but is not a directory\n", path)
		return 1
	}
	return checkPerm(w, path, info.Mode(), perm, fix)
}

func checkPerm(w io.Writer, path string, mode, limit os.FileMode, fix bool) int {
	ok, actual := platform.PermAtMost(mode, limit)
	if ok {
		fmt.Fprintf(w, "  [ OK ] %s (permissions %o)\n", path, actual)
		return 0
	}
	fmt.Fprintf(w, "  [WARN] %s has permissions %o (expected %o)\n", path, actual, limit)
	if !fix {
		return 1
	}
	if err := platform.Chmod(path, limit); err != nil {
		fmt.Fprintf(w, "  [FAIL] Could not fix permissions on %s: %v\n", path, err)
		return 1
	}
	fmt.Fprintf(w, "  [FIX ] Fixed permissions on %s to %o\n", path, limit)
	return 0
}

func checkManifest(w io.Writer, path string) int {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", path)
		return 1
	}
	tweaks, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s (%d tweaks)\n", path, len(tweaks))
	return 0
}

func checkOverrides(w io.Writer, opts CheckOptions) int {
	backend := opts.OverridesBackend
	if backend == "" {
		backend = store.BackendFile
	}
	path := opts.OverridesPath
	if path == "" {
		p, err := OverridesPath(backend)
		if err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return 1
		}
		path = p
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		fmt.Fprintf(w, "  [INFO] %s not created yet (%s backend)\n", path, backend)
		return 0
	}
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", path, err)
		return 1
	}

	st, err := store.Open(backend, path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return 1
	}
	defer st.Close()
	values, err := st.All()
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] reading %s: %v\n", path, err)
		return 1
	}
	fmt.Fprintf(w, "  [ OK ] %s (%s backend, %d overrides)\n", path, backend, len(values))
	return checkPerm(w, path, info.Mode(), FilePermSecure, opts.Fix)
}
