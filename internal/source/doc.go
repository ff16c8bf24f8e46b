// Package source defines the Source and Mutable interfaces consumed by the
// coordinator, along with the concrete providers: in-memory tweaks, manifest
// files, environment variables and persisted user overrides.
package source
