package presentation

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// RenderOptions controls table output.
type RenderOptions struct {
	// Color enables lipgloss styling of section headers and markers.
	Color bool
	// Messages supplies localized strings. The zero value uses English.
	Messages *Messages
	// Overridden reports whether a tweak's value comes from the user overrides.
	// Overridden rows are marked with "*".
	Overridden func(id string) bool
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// Render writes m as one table per section.
func Render(w io.Writer, m *Model, opts RenderOptions) error {
	msgs := opts.Messages
	if msgs == nil {
		en := NewMessages("en")
		msgs = &en
	}

	if m.Len() == 0 {
		_, err := fmt.Fprintln(w, msgs.NoTweaks())
		return err
	}

	for s := 0; s < m.NumSections(); s++ {
		if s > 0 {
			fmt.Fprintln(w)
		}
		title := m.SectionTitle(s)
		if opts.Color {
			title = headerStyle.Render(title)
		}
		fmt.Fprintln(w, title)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  TITLE\tVALUE\tTYPE\tSOURCE")
		for r := 0; r < m.NumRows(s); r++ {
			t, _ := m.TweakAt(IndexPath{Section: s, Row: r})
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
				t.DisplayTitle(), formatValue(t, opts), CellKindFor(t.Kind()), t.Source)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	summary := msgs.Summary(m.Len(), m.NumSections())
	if opts.Color {
		summary = dimStyle.Render(summary)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", summary)
	return err
}

func formatValue(t tweak.Tweak, opts RenderOptions) string {
	v := t.Value.String()
	if t.Kind() == tweak.KindText {
		v = fmt.Sprintf("%q", v)
	}
	if t.ReadOnly {
		v += " (read-only)"
	}
	if opts.Overridden != nil && opts.Overridden(t.Identifier) {
		v += " *"
	}
	return v
}
