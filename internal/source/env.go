package source

import (
	"fmt"
	"strings"

	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// Env is a read-only source built from environment variables of the form
// <prefix><IDENTIFIER>, e.g. TWEAKS_TWEAK_DISPLAY_RED_VIEW=false.
// Values are inferred: true/false become bools, numbers become numbers, and
// everything else is text.
type Env struct {
	prefix string
	tweaks map[string]tweak.Tweak
}

// EnvName returns the variable name that carries id, upper-casing it and
// replacing every character outside [A-Z0-9_] with an underscore.
func EnvName(prefix, id string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, r := range strings.ToUpper(id) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// NewEnv snapshots environ (as returned by os.Environ). A variable whose name
// matches EnvName(prefix, id) for a tweak in known is reported under that
// exact id and must parse as that tweak's kind; one that does not is left out
// and returned as an error. Any other prefixed variable is reported under its
// lower-cased suffix with an inferred kind.
func NewEnv(prefix string, environ []string, known []tweak.Tweak) (*Env, []error) {
	e := &Env{prefix: prefix, tweaks: make(map[string]tweak.Tweak)}

	vars := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) || len(k) == len(prefix) {
			continue
		}
		vars[k] = v
	}

	var errs []error
	for _, t := range known {
		name := EnvName(prefix, t.Identifier)
		raw, ok := vars[name]
		if !ok {
			continue
		}
		delete(vars, name)
		v, err := tweak.Parse(raw, t.Kind())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s (tweak %s is %s): %w", name, t.Identifier, t.Kind(), err))
			continue
		}
		e.add(t.Identifier, v)
	}
	for k, raw := range vars {
		e.add(strings.ToLower(strings.TrimPrefix(k, prefix)), tweak.Infer(raw))
	}
	return e, errs
}

func (e *Env) add(id string, v tweak.Value) {
	e.tweaks[id] = tweak.Tweak{Identifier: id, Value: v, Source: e.Name()}
}

func (e *Env) Name() string { return "env" }

// Prefix returns the variable prefix the source was built with.
func (e *Env) Prefix() string { return e.prefix }

func (e *Env) Lookup(id string) (tweak.Tweak, bool) {
	t, ok := e.tweaks[id]
	return t, ok
}

func (e *Env) Tweaks() []tweak.Tweak {
	out := make([]tweak.Tweak, 0, len(e.tweaks))
	for _, t := range e.tweaks {
		out = append(out, t)
	}
	tweak.SortByIdentifier(out)
	return out
}
