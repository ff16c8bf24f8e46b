package presentation

import (
	"sort"

	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Section is one display group of tweaks.
type Section struct {
	Title string        `json:"title"`
	Items []tweak.Tweak `json:"items"`
}

// IndexPath addresses a row inside a section.
type IndexPath struct {
	Section int `json:"section"`
	Row     int `json:"row"`
}

// Model is an immutable grouping of tweaks into sorted sections.
type Model struct {
	sections []Section
}

// Build buckets tweaks by group. Tweaks without a group, and tweaks whose
// group equals defaultGroup, share the defaultGroup bucket. Sections are
// sorted by title and rows by display title, ties broken by identifier.
func Build(tweaks []tweak.Tweak, defaultGroup string) *Model {
	sorted := make([]tweak.Tweak, len(tweaks))
	copy(sorted, tweaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DisplayTitle() != b.DisplayTitle() {
			return a.DisplayTitle() < b.DisplayTitle()
		}
		return a.Identifier < b.Identifier
	})

	buckets := make(map[string][]tweak.Tweak)
	for _, t := range sorted {
		group := t.Group
		if group == "" {
			group = defaultGroup
		}
		buckets[group] = append(buckets[group], t)
	}

	m := &Model{sections: make([]Section, 0, len(buckets))}
	for title, items := range buckets {
		m.sections = append(m.sections, Section{Title: title, Items: items})
	}
	sort.Slice(m.sections, func(i, j int) bool {
		return m.sections[i].Title < m.sections[j].Title
	})
	return m
}

// Sections returns a copy of the section list.
func (m *Model) Sections() []Section {
	out := make([]Section, len(m.sections))
	copy(out, m.sections)
	return out
}

// NumSections returns the number of sections.
func (m *Model) NumSections() int {
	if m == nil {
		return 0
	}
	return len(m.sections)
}

// NumRows returns the number of rows in section, or 0 when out of range.
func (m *Model) NumRows(section int) int {
	if section < 0 || section >= m.NumSections() {
		return 0
	}
	return len(m.sections[section].Items)
}

// SectionTitle returns the header of section, or "" when out of range.
func (m *Model) SectionTitle(section int) string {
	if section < 0 || section >= m.NumSections() {
		return ""
	}
	return m.sections[section].Title
}

// TweakAt returns the tweak at p.
func (m *Model) TweakAt(p IndexPath) (tweak.Tweak, bool) {
	if p.Row < 0 || p.Row >= m.NumRows(p.Section) {
		return tweak.Tweak{}, false
	}
	return m.sections[p.Section].Items[p.Row], true
}

// IndexOf locates the tweak with identifier id.
func (m *Model) IndexOf(id string) (IndexPath, bool) {
	for s := 0; s < m.NumSections(); s++ {
		for r, t := range m.sections[s].Items {
			if t.Identifier == id {
				return IndexPath{Section: s, Row: r}, true
			}
		}
	}
	return IndexPath{}, false
}

// Len returns the total number of rows across all sections.
func (m *Model) Len() int {
	n := 0
	for s := 0; s < m.NumSections(); s++ {
		n += len(m.sections[s].Items)
	}
	return n
}
