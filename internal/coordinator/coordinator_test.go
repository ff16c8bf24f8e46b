package coordinator

import (
	"errors"
	"testing"

	"github.com/tweaks-labs/tweaks/internal/source"
	"github.com/tweaks-labs/tweaks/internal/tweak"
	"go.uber.org/zap/zaptest"
)

// static is a read-only source for tests.
type static struct {
	name   string
	tweaks map[string]tweak.Tweak
}

func newStatic(name string, ts ...tweak.Tweak) *static {
	s := &static{name: name, tweaks: make(map[string]tweak.Tweak)}
	for _, t := range ts {
		t.Source = name
		s.tweaks[t.Identifier] = t
	}
	return s
}

func (s *static) Name() string { return s.name }

func (s *static) Lookup(id string) (tweak.Tweak, bool) {
	t, ok := s.tweaks[id]
	return t, ok
}

func (s *static) Tweaks() []tweak.Tweak {
	out := make([]tweak.Tweak, 0, len(s.tweaks))
	for _, t := range s.tweaks {
		out = append(out, t)
	}
	tweak.SortByIdentifier(out)
	return out
}

func defaultsSource() *static {
	return newStatic("defaults",
		tweak.Tweak{Identifier: "display_red_view", Value: tweak.Bool(true), Title: "Display Red View", Group: "UI"},
		tweak.Tweak{Identifier: "display_yellow_view", Value: tweak.Bool(false), Title: "Display Yellow View", Group: "UI"},
		tweak.Tweak{Identifier: "red_view_alpha_component", Value: tweak.Number(1), Title: "Red View Alpha Component", Group: "UI"},
		tweak.Tweak{Identifier: "tap_to_change_color_enabled", Value: tweak.Bool(true)},
		tweak.Tweak{Identifier: "internal_build_number", Value: tweak.Number(42), Hidden: true},
		tweak.Tweak{Identifier: "api_environment", Value: tweak.Text("production"), ReadOnly: true, Group: "General"},
	)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *source.Memory, *static) {
	t.Helper()
	defaults := defaultsSource()
	overrides := source.NewMemory("overrides")
	c := New(zaptest.NewLogger(t),
		Layer{Source: defaults, Priority: PriorityDefaults},
		Layer{Source: overrides, Priority: PriorityOverrides},
	)
	return c, overrides, defaults
}

func TestValue_HigherPriorityWins(t *testing.T) {
	low := newStatic("low", tweak.Tweak{Identifier: "a", Value: tweak.Text("low")})
	high := newStatic("high", tweak.Tweak{Identifier: "a", Value: tweak.Text("high")})

	// Registration order must not matter when priorities differ.
	for name, layers := range map[string][]Layer{
		"low first":  {{low, 1}, {high, 2}},
		"high first": {{high, 2}, {low, 1}},
	} {
		t.Run(name, func(t *testing.T) {
			c := New(nil, layers...)
			v, ok := c.Value("a")
			if !ok {
				t.Fatal("Value(a) not found")
			}
			if s, _ := v.TextValue(); s != "high" {
				t.Errorf("Value(a) = %q, want high", s)
			}
		})
	}
}

func TestValue_EqualPriorityFirstWins(t *testing.T) {
	first := newStatic("first", tweak.Tweak{Identifier: "a", Value: tweak.Number(1)})
	second := newStatic("second", tweak.Tweak{Identifier: "a", Value: tweak.Number(2)})
	c := New(nil, Layer{first, 0}, Layer{second, 0})

	tw, _ := c.Tweak("a")
	if !tw.Value.Equal(tweak.Number(1)) || tw.Source != "first" {
		t.Errorf("Tweak(a) = %+v, want value 1 from first", tw)
	}
}

func TestValue_Unknown(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	if v, ok := c.Value("some_nonexisting_tweak"); ok || v.IsValid() {
		t.Errorf("Value(unknown) = %v, %v; want absent", v, ok)
	}
}

func TestTweak_MetadataFallsThrough(t *testing.T) {
	c, overrides, _ := newTestCoordinator(t)
	overrides.Set("display_yellow_view", tweak.Bool(true))

	tw, ok := c.Tweak("display_yellow_view")
	if !ok {
		t.Fatal("not found")
	}
	if tw.Source != "overrides" {
		t.Errorf("Source = %q, want overrides", tw.Source)
	}
	if tw.Title != "Display Yellow View" || tw.Group != "UI" {
		t.Errorf("metadata not inherited: %+v", tw)
	}
	if b, _ := tw.Value.BoolValue(); !b {
		t.Error("override value not visible")
	}
}

func TestDisplayableTweaks(t *testing.T) {
	c, overrides, _ := newTestCoordinator(t)
	overrides.Set("display_red_view", tweak.Bool(false))
	overrides.Set("orphan_override", tweak.Text("x"))

	got := c.DisplayableTweaks()
	ids := make(map[string]int)
	for _, tw := range got {
		ids[tw.Identifier]++
	}
	for id, n := range ids {
		if n != 1 {
			t.Errorf("%s appears %d times", id, n)
		}
	}
	// 6 defaults - 1 hidden + 1 orphan override.
	if len(got) != 6 {
		t.Errorf("len = %d, want 6: %+v", len(got), got)
	}
	if _, ok := ids["internal_build_number"]; ok {
		t.Error("hidden tweak listed")
	}
	if len(c.AllTweaks()) != 7 {
		t.Errorf("AllTweaks len = %d, want 7", len(c.AllTweaks()))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Identifier >= got[i].Identifier {
			t.Fatalf("not sorted by identifier at %d", i)
		}
	}
}

func TestTopMutableSource(t *testing.T) {
	c := New(nil, Layer{defaultsSource(), PriorityDefaults})
	if _, ok := c.TopMutableSource(); ok {
		t.Fatal("expected no mutable source")
	}

	lower := source.NewMemory("lower")
	upper := source.NewMemory("upper")
	c.Add(lower, 5)
	c.Add(upper, 15)
	m, ok := c.TopMutableSource()
	if !ok || m.Name() != "upper" {
		t.Errorf("TopMutableSource = %v, %v; want upper", m, ok)
	}
}

func TestSet_NoMutableSource(t *testing.T) {
	defaults := defaultsSource()
	c := New(nil, Layer{defaults, PriorityDefaults})

	err := c.Set("display_yellow_view", tweak.Bool(true))
	if !errors.Is(err, ErrNoMutableSource) {
		t.Fatalf("Set error = %v, want ErrNoMutableSource", err)
	}
	if v, _ := c.Value("display_yellow_view"); !v.Equal(tweak.Bool(false)) {
		t.Error("value changed without a mutable source")
	}
	if err := c.Reset("display_yellow_view"); !errors.Is(err, ErrNoMutableSource) {
		t.Errorf("Reset error = %v, want ErrNoMutableSource", err)
	}
}

func TestSet_WritesTopMutableOnly(t *testing.T) {
	defaults := defaultsSource()
	lower := source.NewMemory("lower", tweak.Tweak{Identifier: "display_yellow_view", Value: tweak.Bool(false)})
	upper := source.NewMemory("upper")
	c := New(nil, Layer{defaults, 0}, Layer{lower, 10}, Layer{upper, 20})

	if err := c.Set("display_yellow_view", tweak.Bool(true)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if tw, ok := upper.Lookup("display_yellow_view"); !ok || !tw.Value.Equal(tweak.Bool(true)) {
		t.Error("upper source not written")
	}
	if tw, _ := lower.Lookup("display_yellow_view"); !tw.Value.Equal(tweak.Bool(false)) {
		t.Error("lower mutable source was modified")
	}
	if tw, _ := defaults.Lookup("display_yellow_view"); !tw.Value.Equal(tweak.Bool(false)) {
		t.Error("defaults were modified")
	}
	if v, _ := c.Value("display_yellow_view"); !v.Equal(tweak.Bool(true)) {
		t.Error("Value does not reflect the write")
	}
	if !c.IsOverridden("display_yellow_view") {
		t.Error("IsOverridden = false after Set")
	}
}

func TestSet_Rejections(t *testing.T) {
	c, overrides, _ := newTestCoordinator(t)

	tests := []struct {
		name string
		id   string
		v    tweak.Value
		want error
	}{
		{"read-only", "api_environment", tweak.Text("staging"), ErrReadOnly},
		{"kind mismatch", "display_red_view", tweak.Text("yes"), ErrKindMismatch},
		{"invalid value", "display_red_view", tweak.Value{}, tweak.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(tt.id, tt.v); !errors.Is(err, tt.want) {
				t.Fatalf("Set error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(overrides.Tweaks()) != 0 {
		t.Errorf("rejected writes reached the store: %+v", overrides.Tweaks())
	}

	// Unknown identifiers are accepted with any kind.
	if err := c.Set("brand_new", tweak.Number(3)); err != nil {
		t.Errorf("Set(new id) error: %v", err)
	}
}

func TestReset(t *testing.T) {
	c, overrides, _ := newTestCoordinator(t)
	c.Set("red_view_alpha_component", tweak.Number(0.2))

	var changes []Change
	unsubscribe := c.Subscribe(func(ch Change) { changes = append(changes, ch) })
	defer unsubscribe()

	if err := c.Reset("red_view_alpha_component"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if v, _ := c.Value("red_view_alpha_component"); !v.Equal(tweak.Number(1)) {
		t.Errorf("after reset value = %v, want default 1", v)
	}
	if _, ok := overrides.Lookup("red_view_alpha_component"); ok {
		t.Error("override still stored")
	}
	if c.IsOverridden("red_view_alpha_component") {
		t.Error("IsOverridden = true after Reset")
	}

	// Second reset is a no-op and emits nothing.
	if err := c.Reset("red_view_alpha_component"); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	ch := changes[0]
	if !ch.Reset || !ch.Old.Equal(tweak.Number(0.2)) || !ch.New.Equal(tweak.Number(1)) {
		t.Errorf("change = %+v", ch)
	}
}

func TestSubscribe(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	var got []Change
	unsubscribe := c.Subscribe(func(ch Change) { got = append(got, ch) })

	c.Set("display_yellow_view", tweak.Bool(true))
	c.Set("api_environment", tweak.Text("staging")) // rejected, no event
	unsubscribe()
	unsubscribe()
	c.Set("display_yellow_view", tweak.Bool(false))

	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1", len(got))
	}
	ch := got[0]
	if ch.Identifier != "display_yellow_view" || ch.Source != "overrides" ||
		!ch.Old.Equal(tweak.Bool(false)) || !ch.New.Equal(tweak.Bool(true)) || ch.Reset {
		t.Errorf("change = %+v", ch)
	}
}

func TestSources(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	infos := c.Sources()
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	if infos[0].Name != "overrides" || !infos[0].Mutable || infos[0].Priority != PriorityOverrides {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Name != "defaults" || infos[1].Mutable || infos[1].Count != 6 {
		t.Errorf("infos[1] = %+v", infos[1])
	}
}
