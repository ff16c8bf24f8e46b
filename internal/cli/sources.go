package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sourcesJSON bool

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configuration sources in precedence order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		infos := s.Coordinator.Sources()
		if sourcesJSON {
			return printJSON(cmd.OutOrStdout(), infos)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "PRIORITY\tNAME\tMUTABLE\tTWEAKS")
		for _, info := range infos {
			mutable := "no"
			if info.Mutable {
				mutable = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", info.Priority, info.Name, mutable, info.Count)
		}
		return w.Flush()
	},
}

func init() {
	sourcesCmd.Flags().BoolVar(&sourcesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(sourcesCmd)
}
