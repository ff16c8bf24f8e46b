package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate tweaks manifests",
	Long: `Check manifests against the tweaks schema and the supported format
version (` + manifest.SupportedFormats + `).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if !validateManifest(cmd, path) {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d manifest(s) invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateManifest(cmd *cobra.Command, path string) bool {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return false
	}
	if !result.Valid {
		fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "    - %s\n", issue)
		}
		return false
	}

	tweaks, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return false
	}
	fmt.Fprintf(out, "  [ OK ] Valid manifest: %d tweaks\n", len(tweaks))
	return true
}
