package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tweaks-labs/tweaks/internal/branding"
	"github.com/tweaks-labs/tweaks/internal/config"
	"github.com/tweaks-labs/tweaks/internal/logging"
	"github.com/tweaks-labs/tweaks/internal/presentation"
	"github.com/tweaks-labs/tweaks/internal/session"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Persistent flags.
var (
	flagConfig           string
	flagDefaults         []string
	flagOverridesBackend string
	flagOverridesPath    string
	flagNoEnv            bool
	flagEnvFiles         []string
	flagVerbose          bool
)

// state is built once per invocation by PersistentPreRunE.
var state struct {
	cfg  *config.Config
	log  *zap.Logger
	msgs presentation.Messages
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` resolves feature flags ("tweaks") from layered sources: defaults
manifests, ` + session.EnvPrefix() + `* environment variables and persisted user overrides.
Overrides take precedence, then the environment, then the defaults.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state.log != nil {
			_ = state.log.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/"+branding.HomeDir()+"/config.yaml)")
	pf.StringSliceVar(&flagDefaults, "defaults", nil, "Defaults manifest file (repeatable)")
	pf.StringVar(&flagOverridesBackend, "overrides-backend", "", "Overrides store backend (file or sqlite)")
	pf.StringVar(&flagOverridesPath, "overrides-path", "", "Overrides store location")
	pf.StringSliceVar(&flagEnvFiles, "env-file", nil, "Dotenv file with "+session.EnvPrefix()+"* variables (repeatable)")
	pf.BoolVar(&flagNoEnv, "no-env", false, "Ignore "+session.EnvPrefix()+"* environment variables")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	v := cfg.Viper()
	pf := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		config.KeyDefaultsFiles:    "defaults",
		config.KeyOverridesBackend: "overrides-backend",
		config.KeyOverridesPath:    "overrides-path",
		config.KeyEnvFiles:         "env-file",
	} {
		if err := v.BindPFlag(key, pf.Lookup(name)); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	log, err := logging.New(cfg.Get(config.KeyLogLevel), flagVerbose)
	if err != nil {
		return err
	}

	state.cfg = cfg
	state.log = log
	state.msgs = presentation.NewMessages(locale(cfg))
	log.Debug("config loaded", zap.String("path", cfg.Path()))
	return nil
}

// locale prefers the configured locale, then LC_ALL and LANG.
func locale(cfg *config.Config) string {
	if l := cfg.Get(config.KeyLocale); l != "" {
		return l
	}
	for _, name := range []string{"LC_ALL", "LANG"} {
		if l := os.Getenv(name); l != "" && l != "C" && l != "POSIX" {
			return l
		}
	}
	return ""
}

// settings decodes the configuration with command-line adjustments applied.
func settings() (config.Settings, error) {
	s, err := state.cfg.Settings()
	if err != nil {
		return s, err
	}
	if flagNoEnv {
		s.Env.Enabled = false
	}
	return s, nil
}

// openSession builds the coordinator for a command. Close it when done.
func openSession(readOnly bool) (*session.Session, error) {
	s, err := settings()
	if err != nil {
		return nil, err
	}
	opts := session.OptionsFrom(s)
	opts.ReadOnly = readOnly
	return session.Open(opts, state.log), nil
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
