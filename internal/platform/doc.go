// Package platform wraps filesystem permission handling so callers behave
// the same on Unix and Windows. Windows has no Unix permission bits, so
// checks there always pass and chmod is a no-op.
package platform
