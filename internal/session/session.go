// Package session assembles a coordinator from the configured sources and
// owns the resources behind them for the length of one command or server run.
package session

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tweaks-labs/tweaks/internal/branding"
	"github.com/tweaks-labs/tweaks/internal/config"
	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/source"
	"github.com/tweaks-labs/tweaks/internal/store"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

// OverridesSourceName names the persisted overrides layer.
const OverridesSourceName = "overrides"

// EnvPrefix is the prefix of environment variables read by the env source,
// e.g. TWEAKS_TWEAK_DISPLAY_RED_VIEW.
func EnvPrefix() string {
	return branding.EnvVar("TWEAK") + "_"
}

// Options selects the sources of a session.
type Options struct {
	DefaultsFiles []string

	EnvEnabled bool
	// EnvFiles are dotenv files read before the process environment, which
	// wins on conflicts.
	EnvFiles []string
	// Environ replaces os.Environ() when non-nil.
	Environ []string

	OverridesBackend string
	OverridesPath    string
	// ReadOnly skips the overrides layer entirely.
	ReadOnly bool
}

// OptionsFrom maps decoded settings to session options.
func OptionsFrom(s config.Settings) Options {
	return Options{
		DefaultsFiles:    s.DefaultsFiles,
		EnvEnabled:       s.Env.Enabled,
		EnvFiles:         s.Env.Files,
		OverridesBackend: s.Overrides.Backend,
		OverridesPath:    s.Overrides.Path,
	}
}

// Session is an open coordinator plus the stores it writes to.
type Session struct {
	Coordinator *coordinator.Coordinator

	overrides *source.Overrides
	skipped   []error
	log       *zap.Logger
}

// Open builds the layered coordinator: defaults manifests at
// PriorityDefaults, environment variables at PriorityEnv and the overrides
// store at PriorityOverrides. A source that fails to load is logged, recorded
// in Skipped and left out; the remaining sources still form a session.
func Open(opts Options, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{Coordinator: coordinator.New(log), log: log}

	var known []tweak.Tweak
	for _, path := range opts.DefaultsFiles {
		f, err := source.OpenFile(path)
		if err != nil {
			s.skip(fmt.Errorf("defaults %s: %w", path, err))
			continue
		}
		s.Coordinator.Add(f, coordinator.PriorityDefaults)
		known = append(known, f.Tweaks()...)
		log.Debug("defaults loaded", zap.String("path", path), zap.Int("tweaks", len(f.Tweaks())))
	}

	if opts.EnvEnabled {
		environ := opts.Environ
		if environ == nil {
			environ = os.Environ()
		}
		environ = append(s.readEnvFiles(opts.EnvFiles), environ...)
		env, errs := source.NewEnv(EnvPrefix(), environ, known)
		for _, err := range errs {
			s.skip(fmt.Errorf("env: %w", err))
		}
		s.Coordinator.Add(env, coordinator.PriorityEnv)
	}

	if !opts.ReadOnly {
		st, err := store.Open(opts.OverridesBackend, opts.OverridesPath)
		if err != nil {
			s.skip(fmt.Errorf("overrides %s: %w", opts.OverridesPath, err))
			return s
		}
		o, err := source.NewOverrides(OverridesSourceName, st)
		if err != nil {
			st.Close()
			s.skip(fmt.Errorf("overrides %s: %w", opts.OverridesPath, err))
			return s
		}
		s.overrides = o
		s.Coordinator.Add(o, coordinator.PriorityOverrides)
	}
	return s
}

// readEnvFiles loads dotenv files into KEY=VALUE pairs. Later files win.
// An unreadable file is skipped.
func (s *Session) readEnvFiles(paths []string) []string {
	var out []string
	for _, path := range paths {
		vars, err := godotenv.Read(path)
		if err != nil {
			s.skip(fmt.Errorf("env file %s: %w", path, err))
			continue
		}
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, k+"="+vars[k])
		}
		s.log.Debug("env file loaded", zap.String("path", path), zap.Int("vars", len(vars)))
	}
	return out
}

func (s *Session) skip(err error) {
	s.log.Warn("source skipped", zap.Error(err))
	s.skipped = append(s.skipped, err)
}

// Skipped returns the errors of sources that failed to load.
func (s *Session) Skipped() []error {
	return append([]error(nil), s.skipped...)
}

// Close releases the overrides store.
func (s *Session) Close() error {
	if s.overrides == nil {
		return nil
	}
	err := s.overrides.Close()
	s.overrides = nil
	if err != nil {
		return fmt.Errorf("closing overrides: %w", err)
	}
	return nil
}
