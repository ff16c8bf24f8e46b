package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/manifest"
)

var (
	exportOutput string
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the resolved tweaks as a defaults manifest",
	Long: `Snapshot the merged view of every source as a tweaks manifest. The output
can be shipped as a defaults file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		tweaks := s.Coordinator.DisplayableTweaks()
		if exportAll {
			tweaks = s.Coordinator.AllTweaks()
		}
		data, err := manifest.Marshal(tweaks)
		if err != nil {
			return fmt.Errorf("encoding manifest: %w", err)
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d tweaks to %s\n", len(tweaks), exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Include hidden tweaks")
	rootCmd.AddCommand(exportCmd)
}
