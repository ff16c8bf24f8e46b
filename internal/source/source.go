package source

import (
	"errors"

	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// ErrNotFound is returned by Mutable.Delete when the identifier is absent.
var ErrNotFound = errors.New("tweak not found")

// Source is a read-only provider of tweaks.
type Source interface {
	// Name identifies the source in listings and in Tweak.Source.
	Name() string
	// Lookup returns the tweak with the given identifier, if the source defines it.
	Lookup(id string) (tweak.Tweak, bool)
	// Tweaks returns every tweak the source defines, sorted by identifier.
	Tweaks() []tweak.Tweak
}

// Mutable is a Source that accepts writes.
type Mutable interface {
	Source
	Set(id string, v tweak.Value) error
	Delete(id string) error
}

// IsMutable reports whether src accepts writes.
func IsMutable(src Source) bool {
	_, ok := src.(Mutable)
	return ok
}
