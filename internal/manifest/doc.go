// Package manifest parses and validates tweaks manifests: YAML or JSON files
// that declare default tweak values with their titles and groups. Manifests
// are checked against an embedded JSON Schema and a supported format version
// before they are turned into tweaks.
package manifest
