package platform

import (
	"fmt"
	"os"
	"runtime"
)

// Chmod sets file permissions. On Windows this is a no-op.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// EnsureDir creates path with perm when missing and tightens the permissions
// of an existing directory that is more open than perm.
func EnsureDir(path string, perm os.FileMode) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, perm); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		return Chmod(path, perm)
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}
	if ok, _ := PermAtMost(info.Mode(), perm); !ok {
		return Chmod(path, perm)
	}
	return nil
}

// PermAtMost reports whether mode grants no bits beyond limit. It returns
// the actual permission bits for reporting. Always true on Windows.
func PermAtMost(mode, limit os.FileMode) (bool, os.FileMode) {
	perm := mode.Perm()
	if runtime.GOOS == "windows" {
		return true, perm
	}
	return perm&^limit == 0, perm
}
