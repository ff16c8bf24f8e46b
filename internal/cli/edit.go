package cli

import (
	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/editor"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit tweaks interactively",
	Long: `Show a numbered menu of tweaks. Pick a number to toggle a bool or enter a
new number or text; "r <n>" resets a tweak and "q" quits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		return editor.New(s.Coordinator, state.msgs, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
