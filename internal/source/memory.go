package source

import (
	"fmt"
	"sync"

	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Memory is an in-memory mutable source. It keeps full tweaks, so metadata
// seeded through NewMemory survives a Set.
type Memory struct {
	name string

	mu     sync.RWMutex
	tweaks map[string]tweak.Tweak
}

// NewMemory returns a Memory source seeded with the given tweaks.
func NewMemory(name string, seed ...tweak.Tweak) *Memory {
	m := &Memory{name: name, tweaks: make(map[string]tweak.Tweak, len(seed))}
	for _, t := range seed {
		t.Source = name
		m.tweaks[t.Identifier] = t
	}
	return m
}

func (m *Memory) Name() string { return m.name }

func (m *Memory) Lookup(id string) (tweak.Tweak, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tweaks[id]
	return t, ok
}

func (m *Memory) Tweaks() []tweak.Tweak {
	m.mu.RLock()
	out := make([]tweak.Tweak, 0, len(m.tweaks))
	for _, t := range m.tweaks {
		out = append(out, t)
	}
	m.mu.RUnlock()
	tweak.SortByIdentifier(out)
	return out
}

func (m *Memory) Set(id string, v tweak.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("setting %q: %w", id, tweak.ErrInvalidValue)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tweaks[id]
	if !ok {
		t = tweak.Tweak{Identifier: id, Source: m.name}
	}
	t.Value = v
	m.tweaks[id] = t
	return nil
}

func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tweaks[id]; !ok {
		return fmt.Errorf("deleting %q: %w", id, ErrNotFound)
	}
	delete(m.tweaks, id)
	return nil
}
