package coordinator

import (
	"fmt"
	"testing"

	"github.com/tweaks-labs/tweaks/internal/source"
	"github.com/tweaks-labs/tweaks/internal/tweak"
	"pgregory.net/rapid"
)

var idGen = rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"})

func valueGen() *rapid.Generator[tweak.Value] {
	return rapid.Custom(func(t *rapid.T) tweak.Value {
		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			return tweak.Bool(rapid.Bool().Draw(t, "bool"))
		case 1:
			return tweak.Number(float64(rapid.IntRange(-100, 100).Draw(t, "number")))
		default:
			return tweak.Text(rapid.StringN(0, 8, -1).Draw(t, "text"))
		}
	})
}

type genLayer struct {
	priority Priority
	mutable  bool
	values   map[string]tweak.Value
}

func layersGen() *rapid.Generator[[]genLayer] {
	return rapid.Custom(func(t *rapid.T) []genLayer {
		n := rapid.IntRange(1, 5).Draw(t, "layers")
		out := make([]genLayer, n)
		for i := range out {
			out[i] = genLayer{
				priority: Priority(rapid.IntRange(0, 3).Draw(t, "priority")),
				mutable:  rapid.Bool().Draw(t, "mutable"),
				values:   rapid.MapOf(idGen, valueGen()).Draw(t, "values"),
			}
		}
		return out
	})
}

func build(gl []genLayer) (*Coordinator, []source.Source) {
	c := New(nil)
	srcs := make([]source.Source, len(gl))
	for i, l := range gl {
		name := fmt.Sprintf("layer%d", i)
		var seed []tweak.Tweak
		for id, v := range l.values {
			seed = append(seed, tweak.Tweak{Identifier: id, Value: v})
		}
		if l.mutable {
			srcs[i] = source.NewMemory(name, seed...)
		} else {
			srcs[i] = newStatic(name, seed...)
		}
		c.Add(srcs[i], l.priority)
	}
	return c, srcs
}

// expected finds the winning layer by brute force: highest priority, then
// lowest index.
func expected(gl []genLayer, id string) (tweak.Value, bool) {
	best := -1
	for i, l := range gl {
		if _, ok := l.values[id]; !ok {
			continue
		}
		if best == -1 || l.priority > gl[best].priority {
			best = i
		}
	}
	if best == -1 {
		return tweak.Value{}, false
	}
	return gl[best].values[id], true
}

func TestProperty_PrecedenceResolution(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gl := layersGen().Draw(t, "layers")
		c, _ := build(gl)
		id := idGen.Draw(t, "id")

		want, wantOK := expected(gl, id)
		got, ok := c.Value(id)
		if ok != wantOK {
			t.Fatalf("Value(%q) found=%v, want %v", id, ok, wantOK)
		}
		if ok && !got.Equal(want) {
			t.Fatalf("Value(%q) = %v, want %v", id, got, want)
		}
	})
}

func TestProperty_DisplayableTweaksUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gl := layersGen().Draw(t, "layers")
		c, _ := build(gl)

		union := make(map[string]bool)
		for _, l := range gl {
			for id := range l.values {
				union[id] = true
			}
		}
		got := c.DisplayableTweaks()
		if len(got) != len(union) {
			t.Fatalf("DisplayableTweaks has %d entries, want %d", len(got), len(union))
		}
		seen := make(map[string]bool)
		for _, tw := range got {
			if seen[tw.Identifier] {
				t.Fatalf("duplicate identifier %q", tw.Identifier)
			}
			seen[tw.Identifier] = true
			want, _ := expected(gl, tw.Identifier)
			if !tw.Value.Equal(want) {
				t.Fatalf("%q = %v, want %v", tw.Identifier, tw.Value, want)
			}
		}
	})
}

func snapshot(srcs []source.Source) []map[string]tweak.Value {
	out := make([]map[string]tweak.Value, len(srcs))
	for i, s := range srcs {
		out[i] = make(map[string]tweak.Value)
		for _, tw := range s.Tweaks() {
			out[i][tw.Identifier] = tw.Value
		}
	}
	return out
}

func sameValues(a, b map[string]tweak.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !b[k].Equal(v) {
			return false
		}
	}
	return true
}

func TestProperty_WritesTouchOnlyTopMutable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gl := layersGen().Draw(t, "layers")
		c, srcs := build(gl)
		id := idGen.Draw(t, "id")
		before := snapshot(srcs)

		current, known := c.Value(id)
		v := valueGen().Draw(t, "value")
		if known {
			// Keep the kind so the write is not rejected for a mismatch.
			v = sameKind(current, v)
		}

		top, hasTop := c.TopMutableSource()
		err := c.Set(id, v)
		after := snapshot(srcs)

		for i, s := range srcs {
			if hasTop && s.Name() == top.Name() {
				continue
			}
			if !sameValues(before[i], after[i]) {
				t.Fatalf("source %s changed by Set", s.Name())
			}
		}
		if !hasTop {
			if err == nil {
				t.Fatal("Set succeeded without a mutable source")
			}
			return
		}
		if err != nil {
			t.Fatalf("Set: %v", err)
		}
		if tw, ok := top.Lookup(id); !ok || !tw.Value.Equal(v) {
			t.Fatalf("top mutable source not updated")
		}

		// The write is visible when the mutable layer is also the winning layer.
		topIsFirst := c.Sources()[0].Name == top.Name()
		if got, _ := c.Value(id); topIsFirst && !got.Equal(v) {
			t.Fatalf("Value(%q) = %v after write of %v", id, got, v)
		}
	})
}

func sameKind(current, v tweak.Value) tweak.Value {
	if current.Kind() == v.Kind() {
		return v
	}
	switch current.Kind() {
	case tweak.KindBool:
		b, _ := current.BoolValue()
		return tweak.Bool(!b)
	case tweak.KindNumber:
		n, _ := current.NumberValue()
		return tweak.Number(n + 1)
	default:
		s, _ := current.TextValue()
		return tweak.Text(s + "!")
	}
}
