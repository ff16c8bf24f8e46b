package coordinator

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tweaks-labs/tweaks/internal/source"
	"github.com/tweaks-labs/tweaks/internal/tweak"
	"go.uber.org/zap"
)

// Priority orders layers. Higher values take precedence; among equal
// priorities the layer added first wins.
type Priority int

// Standard priorities. User overrides sit on top so that an edit is visible
// immediately after it is written.
const (
	PriorityDefaults  Priority = 0
	PriorityEnv       Priority = 10
	PriorityOverrides Priority = 20
)

var (
	// ErrNotFound is returned when no layer defines an identifier.
	ErrNotFound = errors.New("tweak not found")
	// ErrNoMutableSource is returned by writes when every layer is read-only.
	// Nothing is changed.
	ErrNoMutableSource = errors.New("no mutable source")
	// ErrReadOnly is returned when the resolved tweak is marked read-only.
	ErrReadOnly = errors.New("tweak is read-only")
	// ErrKindMismatch is returned when a write would change a tweak's kind.
	ErrKindMismatch = errors.New("value kind does not match tweak")
)

// Layer pairs a source with its priority.
type Layer struct {
	Source   source.Source
	Priority Priority
}

// LayerInfo describes a layer for listings.
type LayerInfo struct {
	Name     string   `json:"name"`
	Priority Priority `json:"priority"`
	Mutable  bool     `json:"mutable"`
	Count    int      `json:"count"`
}

// Change describes a successful write or reset.
type Change struct {
	Identifier string
	Old        tweak.Value // invalid when the id was previously undefined
	New        tweak.Value // invalid when the id is no longer defined
	Source     string      // the mutable source that was written
	Reset      bool
}

type layer struct {
	src      source.Source
	priority Priority
	seq      int
}

// Coordinator resolves tweaks across layered sources and routes writes to
// the topmost mutable source. It is safe for concurrent use.
type Coordinator struct {
	log *zap.Logger

	mu     sync.RWMutex
	layers []layer
	seq    int

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New returns a Coordinator over the given layers. A nil logger disables logging.
func New(log *zap.Logger, layers ...Layer) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Coordinator{log: log, subs: make(map[int]func(Change))}
	for _, l := range layers {
		c.Add(l.Source, l.Priority)
	}
	return c
}

// Add registers src at priority p.
func (c *Coordinator) Add(src source.Source, p Priority) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers = append(c.layers, layer{src: src, priority: p, seq: c.seq})
	c.seq++
	sort.SliceStable(c.layers, func(i, j int) bool {
		if c.layers[i].priority != c.layers[j].priority {
			return c.layers[i].priority > c.layers[j].priority
		}
		return c.layers[i].seq < c.layers[j].seq
	})
	c.log.Debug("source added",
		zap.String("source", src.Name()),
		zap.Int("priority", int(p)),
		zap.Bool("mutable", source.IsMutable(src)))
}

// Sources lists the layers in precedence order, highest first.
func (c *Coordinator) Sources() []LayerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]LayerInfo, 0, len(c.layers))
	for _, l := range c.layers {
		out = append(out, LayerInfo{
			Name:     l.src.Name(),
			Priority: l.priority,
			Mutable:  source.IsMutable(l.src),
			Count:    len(l.src.Tweaks()),
		})
	}
	return out
}

// Value returns the value from the highest-precedence source defining id.
func (c *Coordinator) Value(id string) (tweak.Value, bool) {
	t, ok := c.Tweak(id)
	if !ok {
		return tweak.Value{}, false
	}
	return t.Value, true
}

// Tweak returns the resolved tweak for id with merged metadata.
func (c *Coordinator) Tweak(id string) (tweak.Tweak, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(id)
}

// DisplayableTweaks returns one resolved tweak per identifier across all
// sources, excluding hidden tweaks, sorted by identifier.
func (c *Coordinator) DisplayableTweaks() []tweak.Tweak {
	return c.collect(false)
}

// AllTweaks is DisplayableTweaks including hidden tweaks.
func (c *Coordinator) AllTweaks() []tweak.Tweak {
	return c.collect(true)
}

func (c *Coordinator) collect(includeHidden bool) []tweak.Tweak {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []tweak.Tweak
	for _, l := range c.layers {
		for _, t := range l.src.Tweaks() {
			if seen[t.Identifier] {
				continue
			}
			seen[t.Identifier] = true
			resolved, ok := c.resolve(t.Identifier)
			if !ok || (resolved.Hidden && !includeHidden) {
				continue
			}
			out = append(out, resolved)
		}
	}
	tweak.SortByIdentifier(out)
	return out
}

// resolve must be called with c.mu held.
func (c *Coordinator) resolve(id string) (tweak.Tweak, bool) {
	var (
		result tweak.Tweak
		found  bool
	)
	for _, l := range c.layers {
		t, ok := l.src.Lookup(id)
		if !ok {
			continue
		}
		if !found {
			result = tweak.Tweak{Identifier: id, Value: t.Value, Source: l.src.Name()}
			found = true
		}
		if result.Title == "" {
			result.Title = t.Title
		}
		if result.Group == "" {
			result.Group = t.Group
		}
		if result.Description == "" {
			result.Description = t.Description
		}
		result.Hidden = result.Hidden || t.Hidden
		result.ReadOnly = result.ReadOnly || t.ReadOnly
	}
	return result, found
}

// TopMutableSource returns the first mutable source in precedence order.
func (c *Coordinator) TopMutableSource() (source.Mutable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.topMutable()
}

func (c *Coordinator) topMutable() (source.Mutable, bool) {
	for _, l := range c.layers {
		if m, ok := l.src.(source.Mutable); ok {
			return m, true
		}
	}
	return nil, false
}

// IsOverridden reports whether the top mutable source defines id.
func (c *Coordinator) IsOverridden(id string) bool {
	m, ok := c.TopMutableSource()
	if !ok {
		return false
	}
	_, ok = m.Lookup(id)
	return ok
}

// Set writes v for id to the top mutable source. With no mutable source it
// returns ErrNoMutableSource and changes nothing. Writes to a known tweak
// must keep its kind and are refused when it is read-only.
func (c *Coordinator) Set(id string, v tweak.Value) error {
	if !v.IsValid() {
		return fmt.Errorf("setting %q: %w", id, tweak.ErrInvalidValue)
	}

	c.mu.Lock()
	m, ok := c.topMutable()
	if !ok {
		c.mu.Unlock()
		c.log.Info("write ignored", zap.String("id", id), zap.Error(ErrNoMutableSource))
		return fmt.Errorf("setting %q: %w", id, ErrNoMutableSource)
	}
	current, known := c.resolve(id)
	if known {
		if current.ReadOnly {
			c.mu.Unlock()
			return fmt.Errorf("setting %q: %w", id, ErrReadOnly)
		}
		if current.Value.Kind() != v.Kind() {
			c.mu.Unlock()
			return fmt.Errorf("setting %q to %s, tweak is %s: %w", id, v.Kind(), current.Value.Kind(), ErrKindMismatch)
		}
	}
	if err := m.Set(id, v); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("setting %q in %s: %w", id, m.Name(), err)
	}
	c.mu.Unlock()

	c.log.Debug("tweak set",
		zap.String("id", id),
		zap.String("source", m.Name()),
		zap.Stringer("value", v))
	c.notify(Change{Identifier: id, Old: current.Value, New: v, Source: m.Name()})
	return nil
}

// Reset removes id from the top mutable source so lower layers show
// through. Resetting an id that is not overridden is a no-op.
func (c *Coordinator) Reset(id string) error {
	c.mu.Lock()
	m, ok := c.topMutable()
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("resetting %q: %w", id, ErrNoMutableSource)
	}
	if _, defined := m.Lookup(id); !defined {
		c.mu.Unlock()
		return nil
	}
	before, _ := c.resolve(id)
	if err := m.Delete(id); err != nil && !errors.Is(err, source.ErrNotFound) {
		c.mu.Unlock()
		return fmt.Errorf("resetting %q in %s: %w", id, m.Name(), err)
	}
	after, _ := c.resolve(id)
	c.mu.Unlock()

	c.log.Debug("tweak reset", zap.String("id", id), zap.String("source", m.Name()))
	c.notify(Change{Identifier: id, Old: before.Value, New: after.Value, Source: m.Name(), Reset: true})
	return nil
}

// Subscribe registers fn to be called after every successful Set or Reset.
// Callbacks run synchronously on the writing goroutine. The returned
// function removes the subscription.
func (c *Coordinator) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Coordinator) notify(ch Change) {
	c.subMu.Lock()
	keys := make([]int, 0, len(c.subs))
	for k := range c.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	fns := make([]func(Change), 0, len(keys))
	for _, k := range keys {
		fns = append(fns, c.subs[k])
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(ch)
	}
}
