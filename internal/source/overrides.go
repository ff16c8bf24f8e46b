package source

import (
	"fmt"
	"sync"

	"github.com/tweaks-labs/tweaks/internal/store"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Overrides is the mutable source of user overrides. It caches the store's
// contents and writes through on every change. Overrides carry values only.
type Overrides struct {
	name  string
	store store.Store

	mu     sync.RWMutex
	values map[string]tweak.Value
}

// NewOverrides loads every value from st. A store that cannot be read is an
// error and no source is returned.
func NewOverrides(name string, st store.Store) (*Overrides, error) {
	values, err := st.All()
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}
	return &Overrides{name: name, store: st, values: values}, nil
}

func (o *Overrides) Name() string { return o.name }

func (o *Overrides) Lookup(id string) (tweak.Tweak, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.values[id]
	if !ok {
		return tweak.Tweak{}, false
	}
	return tweak.Tweak{Identifier: id, Value: v, Source: o.name}, true
}

func (o *Overrides) Tweaks() []tweak.Tweak {
	o.mu.RLock()
	out := make([]tweak.Tweak, 0, len(o.values))
	for id, v := range o.values {
		out = append(out, tweak.Tweak{Identifier: id, Value: v, Source: o.name})
	}
	o.mu.RUnlock()
	tweak.SortByIdentifier(out)
	return out
}

// Set persists v before updating the cache, so a failed write leaves the
// visible value unchanged.
func (o *Overrides) Set(id string, v tweak.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("setting %q: %w", id, tweak.ErrInvalidValue)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.store.Put(id, v); err != nil {
		return err
	}
	o.values[id] = v
	return nil
}

func (o *Overrides) Delete(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.values[id]; !ok {
		return fmt.Errorf("deleting %q: %w", id, ErrNotFound)
	}
	if err := o.store.Delete(id); err != nil {
		return err
	}
	delete(o.values, id)
	return nil
}

// Close closes the underlying store.
func (o *Overrides) Close() error {
	return o.store.Close()
}
