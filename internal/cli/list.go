package cli

import (
	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/api"
	"github.com/tweaks-labs/tweaks/internal/presentation"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

var (
	listJSON    bool
	listAll     bool
	listNoColor bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tweaks grouped by section",
	Long: `List the resolved value of every tweak, grouped by section. Rows marked
with * come from the user overrides.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include hidden tweaks")
	listCmd.Flags().BoolVar(&listNoColor, "no-color", false, "Disable colored output")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.Close()
	reportSkipped(cmd, s)

	c := s.Coordinator
	var tweaks []tweak.Tweak
	if listAll {
		tweaks = c.AllTweaks()
	} else {
		tweaks = c.DisplayableTweaks()
	}

	if listJSON {
		views := make([]api.TweakView, 0, len(tweaks))
		for _, t := range tweaks {
			views = append(views, tweakView(c, t))
		}
		return printJSON(cmd.OutOrStdout(), views)
	}

	out := cmd.OutOrStdout()
	m := presentation.Build(tweaks, state.msgs.DefaultGroup())
	return presentation.Render(out, m, presentation.RenderOptions{
		Color:      !listNoColor && isTerminal(out),
		Messages:   &state.msgs,
		Overridden: c.IsOverridden,
	})
}
