package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

var setKind string

var setCmd = &cobra.Command{
	Use:   "set <id> <value>",
	Short: "Override the value of a tweak",
	Long: `Write a value to the user overrides. The value is parsed as the tweak's
current kind; new tweaks infer bool, then number, then text unless --kind is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		id, raw := args[0], args[1]
		v, err := parseValue(s.Coordinator, id, raw, setKind)
		if err != nil {
			return err
		}

		err = s.Coordinator.Set(id, v)
		if errors.Is(err, coordinator.ErrNoMutableSource) {
			fmt.Fprintln(cmd.OutOrStdout(), state.msgs.NoMutableSources())
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", id, v)
		return nil
	},
}

func init() {
	setCmd.Flags().StringVar(&setKind, "kind", "", "Value kind (bool, number or text)")
	rootCmd.AddCommand(setCmd)
}

// parseValue interprets raw using the explicit kind, else the kind of the
// existing tweak, else inference.
func parseValue(c *coordinator.Coordinator, id, raw, kindName string) (tweak.Value, error) {
	if kindName != "" {
		k, err := tweak.ParseKind(kindName)
		if err != nil {
			return tweak.Value{}, err
		}
		return tweak.Parse(raw, k)
	}
	if t, ok := c.Tweak(id); ok {
		return tweak.Parse(raw, t.Kind())
	}
	return tweak.Infer(raw), nil
}
