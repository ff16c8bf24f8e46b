// Package store persists user override values. Two backends exist: a YAML
// file written atomically with owner-only permissions, and a SQLite database
// with embedded migrations.
package store
