package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/userdata"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the home directory with a starter config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := userdata.Home()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initializing %s\n", root)
		return userdata.Init(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
