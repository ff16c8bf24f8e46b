package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/coordinator"
)

var getJSON bool

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print the resolved value of a tweak",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		id := args[0]
		t, ok := s.Coordinator.Tweak(id)
		if !ok {
			return fmt.Errorf("tweak %q: %w", id, coordinator.ErrNotFound)
		}
		if getJSON {
			return printJSON(cmd.OutOrStdout(), tweakView(s.Coordinator, t))
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Value)
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getJSON, "json", false, "Output the resolved tweak as JSON")
	rootCmd.AddCommand(getCmd)
}
