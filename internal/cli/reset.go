package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <id>",
	Short: "Remove a user override so the lower layers show through",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		id := args[0]
		if _, ok := s.Coordinator.TopMutableSource(); !ok {
			fmt.Fprintln(cmd.OutOrStdout(), state.msgs.NoMutableSources())
			return nil
		}
		if !s.Coordinator.IsOverridden(id) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not overridden\n", id)
			return nil
		}
		if err := s.Coordinator.Reset(id); err != nil {
			return err
		}
		if v, ok := s.Coordinator.Value(id); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s (now %s)\n", id, v)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
