package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/branding"
	"github.com/tweaks-labs/tweaks/internal/userdata"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the " + branding.DisplayName() + " setup",
	Long: `Check the home directory, every configured defaults manifest and the
overrides store. With --fix, missing directories are created and loose
permissions are tightened.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings()
		if err != nil {
			return err
		}
		problems, err := userdata.Check(cmd.OutOrStdout(), userdata.CheckOptions{
			DefaultsFiles:    s.DefaultsFiles,
			OverridesBackend: s.Overrides.Backend,
			OverridesPath:    s.Overrides.Path,
			Fix:              doctorFix,
		})
		if err != nil {
			return err
		}
		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair directories and permissions")
	rootCmd.AddCommand(doctorCmd)
}
