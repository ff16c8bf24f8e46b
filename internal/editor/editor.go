// Package editor is a line-oriented interactive tweak editor. It prints the
// grouped tweaks as a numbered menu and applies edits through the coordinator.
package editor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/presentation"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Editor runs the menu loop over a reader and writer.
type Editor struct {
	c    *coordinator.Coordinator
	msgs presentation.Messages
	in   *bufio.Reader
	out  io.Writer
}

// New returns an Editor reading commands from r and writing to w.
func New(c *coordinator.Coordinator, msgs presentation.Messages, r io.Reader, w io.Writer) *Editor {
	return &Editor{c: c, msgs: msgs, in: bufio.NewReader(r), out: w}
}

// Run shows the menu until the user quits or input ends.
//
// Commands: a number selects a tweak (bools toggle, numbers and text prompt
// for a new value), "r <n>" resets a tweak and "q" quits.
func (e *Editor) Run() error {
	_, writable := e.c.TopMutableSource()
	if !writable {
		fmt.Fprintf(e.out, "%s\n", e.msgs.NoMutableSources())
	}

	for {
		rows := e.printMenu()
		if len(rows) == 0 {
			return nil
		}
		if writable {
			fmt.Fprintf(e.out, "Enter number [1-%d], r <n> to reset, q to quit: ", len(rows))
		} else {
			fmt.Fprint(e.out, "q to quit: ")
		}

		line, err := e.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(e.out)
			return nil
		}
		if err != nil {
			return err
		}

		switch cmd := strings.TrimSpace(line); {
		case cmd == "q" || cmd == "quit":
			return nil
		case cmd == "":
			continue
		case !writable:
			fmt.Fprintf(e.out, "  %s\n", e.msgs.NoMutableSources())
		case strings.HasPrefix(cmd, "r"):
			t, ok := pick(rows, strings.TrimSpace(strings.TrimPrefix(cmd, "r")))
			if !ok {
				fmt.Fprintf(e.out, "  invalid selection %q: choose 1-%d\n", cmd, len(rows))
				continue
			}
			e.reset(t)
		default:
			t, ok := pick(rows, cmd)
			if !ok {
				fmt.Fprintf(e.out, "  invalid selection %q: choose 1-%d\n", cmd, len(rows))
				continue
			}
			if err := e.edit(t); err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Fprintln(e.out)
					return nil
				}
				return err
			}
		}
	}
}

// printMenu lists every displayable tweak by section with a running number.
func (e *Editor) printMenu() []tweak.Tweak {
	m := presentation.Build(e.c.DisplayableTweaks(), e.msgs.DefaultGroup())
	if m.Len() == 0 {
		fmt.Fprintln(e.out, e.msgs.NoTweaks())
		return nil
	}

	var rows []tweak.Tweak
	for s := 0; s < m.NumSections(); s++ {
		fmt.Fprintf(e.out, "\n%s\n", m.SectionTitle(s))
		for r := 0; r < m.NumRows(s); r++ {
			t, _ := m.TweakAt(presentation.IndexPath{Section: s, Row: r})
			rows = append(rows, t)
			marker := ""
			if e.c.IsOverridden(t.Identifier) {
				marker = " *"
			}
			if t.ReadOnly {
				marker += " (read-only)"
			}
			fmt.Fprintf(e.out, "  %d) %s = %s%s\n", len(rows), t.DisplayTitle(), t.Value, marker)
		}
	}
	fmt.Fprintln(e.out)
	return rows
}

// emptyText sets a text tweak to "" at the value prompt, where a blank line
// keeps the current value.
const emptyText = `""`

func (e *Editor) edit(t tweak.Tweak) error {
	if !t.Editable() {
		fmt.Fprintf(e.out, "  %s is read-only\n", t.DisplayTitle())
		return nil
	}

	var next tweak.Value
	switch presentation.CellKindFor(t.Kind()) {
	case presentation.CellToggle:
		b, _ := t.Value.BoolValue()
		next = tweak.Bool(!b)
	case presentation.CellNumber, presentation.CellText:
		if t.Description != "" {
			fmt.Fprintf(e.out, "  %s\n", t.Description)
		}
		hint := ""
		if t.Kind() == tweak.KindText {
			hint = fmt.Sprintf(", %s for empty", emptyText)
		}
		fmt.Fprintf(e.out, "New value for %s [%s%s]: ", t.DisplayTitle(), t.Value, hint)
		line, err := e.readLine()
		if err != nil {
			return err
		}
		raw := strings.TrimSpace(line)
		if raw == "" {
			return nil
		}
		if t.Kind() == tweak.KindText && raw == emptyText {
			raw = ""
		}
		v, err := tweak.Parse(raw, t.Kind())
		if err != nil {
			fmt.Fprintf(e.out, "  error: %v\n", err)
			return nil
		}
		next = v
	default:
		return nil
	}

	if err := e.c.Set(t.Identifier, next); err != nil {
		fmt.Fprintf(e.out, "  error: %v\n", err)
		return nil
	}
	fmt.Fprintf(e.out, "  set %s = %s\n", t.Identifier, next)
	return nil
}

func (e *Editor) reset(t tweak.Tweak) {
	if !e.c.IsOverridden(t.Identifier) {
		fmt.Fprintf(e.out, "  %s is not overridden\n", t.Identifier)
		return
	}
	if err := e.c.Reset(t.Identifier); err != nil {
		fmt.Fprintf(e.out, "  error: %v\n", err)
		return
	}
	fmt.Fprintf(e.out, "  reset %s\n", t.Identifier)
}

// readLine returns one line without its terminator. A final line without a
// newline is returned before io.EOF.
func (e *Editor) readLine() (string, error) {
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// pick resolves a 1-based menu number.
func pick(rows []tweak.Tweak, s string) (tweak.Tweak, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(rows) {
		return tweak.Tweak{}, false
	}
	return rows[n-1], true
}
