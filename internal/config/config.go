package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"github.com/tweaks-labs/tweaks/internal/branding"
	"github.com/tweaks-labs/tweaks/internal/store"
	"github.com/tweaks-labs/tweaks/internal/userdata"
)

const fileType = "yaml"

// Configuration keys.
const (
	KeyDefaultsFiles    = "defaults_files"
	KeyOverridesBackend = "overrides.backend"
	KeyOverridesPath    = "overrides.path"
	KeyEnvEnabled       = "env.enabled"
	KeyEnvFiles         = "env.files"
	KeyLocale           = "locale"
	KeyLogLevel         = "log.level"
	KeyServeAddr        = "serve.addr"
	KeyServeCORSOrigins = "serve.cors_origins"
)

// listKeys hold comma-separated lists on the command line.
var listKeys = map[string]bool{
	KeyDefaultsFiles:    true,
	KeyEnvFiles:         true,
	KeyServeCORSOrigins: true,
}

// DefaultServeAddr is where `tweaks serve` listens when nothing is configured.
const DefaultServeAddr = "127.0.0.1:8420"

var defaults = map[string]interface{}{
	KeyDefaultsFiles:    []string{},
	KeyOverridesBackend: store.BackendFile,
	KeyOverridesPath:    "",
	KeyEnvEnabled:       true,
	KeyEnvFiles:         []string{},
	KeyLocale:           "",
	KeyLogLevel:         "warn",
	KeyServeAddr:        DefaultServeAddr,
	KeyServeCORSOrigins: []string{},
}

// Keys returns every known configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Settings is the decoded configuration.
type Settings struct {
	DefaultsFiles []string `mapstructure:"defaults_files"`
	Overrides     struct {
		Backend string `mapstructure:"backend" validate:"oneof=file sqlite"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"overrides"`
	Env struct {
		Enabled bool     `mapstructure:"enabled"`
		Files   []string `mapstructure:"files" validate:"dive,required"`
	} `mapstructure:"env"`
	Locale string `mapstructure:"locale"`
	Log    struct {
		Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	} `mapstructure:"log"`
	Serve struct {
		Addr        string   `mapstructure:"addr" validate:"required"`
		CORSOrigins []string `mapstructure:"cors_origins" validate:"dive,required"`
	} `mapstructure:"serve"`
}

// Config wraps a viper instance bound to one config file.
type Config struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at path, or ~/.tweaks/config.yaml when path is
// empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := userdata.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return &Config{v: v, path: path}, nil
}

// Path returns the config file location.
func (c *Config) Path() string { return c.path }

// Viper exposes the underlying instance so the CLI can bind flags.
func (c *Config) Viper() *viper.Viper { return c.v }

// Get returns a config value by key as a string. Returns "" if not set.
func (c *Config) Get(key string) string {
	if listKeys[key] {
		return strings.Join(c.v.GetStringSlice(key), ",")
	}
	return c.v.GetString(key)
}

// Settings decodes the configuration and fills in derived values: the
// overrides path defaults to the home directory, and the home defaults
// manifest is used when no defaults files are configured and it exists.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	if err := c.v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("decoding config: %w", err)
	}

	if err := validateSettings(s); err != nil {
		return s, err
	}
	if s.Overrides.Path == "" {
		p, err := userdata.OverridesPath(s.Overrides.Backend)
		if err != nil {
			return s, err
		}
		s.Overrides.Path = p
	}

	if len(s.DefaultsFiles) == 0 {
		if p, err := userdata.DefaultsPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				s.DefaultsFiles = []string{p}
			}
		}
	}
	return s, nil
}

// Set writes a key-value pair to the config file. Only the file's own
// contents are rewritten; environment and flag values are not persisted.
func (c *Config) Set(key, value string) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, userdata.DirPermSecure); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	file := viper.New()
	file.SetConfigFile(c.path)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", c.path, err)
	}

	var stored interface{} = value
	if listKeys[key] {
		stored = splitList(value)
	}
	file.Set(key, stored)
	c.v.Set(key, stored)

	if err := file.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
