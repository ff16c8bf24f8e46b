package tweak

import "sort"

// Tweak is a single named, user-overridable configuration value together
// with its display metadata.
type Tweak struct {
	Identifier  string `json:"id" yaml:"id"`
	Value       Value  `json:"value" yaml:"value"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Group       string `json:"group,omitempty" yaml:"group,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Hidden      bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	ReadOnly    bool   `json:"read_only,omitempty" yaml:"read_only,omitempty"`

	// Source names the source that supplied Value.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// DisplayTitle returns the title, falling back to the identifier.
func (t Tweak) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Identifier
}

// Editable reports whether the tweak accepts writes.
func (t Tweak) Editable() bool { return !t.ReadOnly }

// Kind is shorthand for t.Value.Kind().
func (t Tweak) Kind() Kind { return t.Value.Kind() }

// SortByIdentifier sorts tweaks in place by identifier.
func SortByIdentifier(ts []Tweak) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Identifier < ts[j].Identifier })
}
