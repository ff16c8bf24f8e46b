package store

import (
	"fmt"

	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Store persists override values keyed by tweak identifier. It keeps values
// only; titles and groups come from other sources.
type Store interface {
	// All returns every stored value.
	All() (map[string]tweak.Value, error)
	// Put inserts or replaces the value for id.
	Put(id string, v tweak.Value) error
	// Delete removes id. Deleting an absent id is not an error.
	Delete(id string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open opens a store of the named backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFile, "":
		s, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown overrides backend %q (want %q or %q)", backend, BackendFile, BackendSQLite)
}
