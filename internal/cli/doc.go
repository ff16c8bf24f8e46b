// Package cli implements the tweaks command tree: listing and editing
// tweaks, serving them over HTTP, validating manifests and managing the
// user configuration.
package cli
