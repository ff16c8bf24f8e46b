package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tweaks-labs/tweaks/internal/api"
	"github.com/tweaks-labs/tweaks/internal/coordinator"
	"github.com/tweaks-labs/tweaks/internal/session"
	"github.com/tweaks-labs/tweaks/internal/tweak"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func tweakView(c *coordinator.Coordinator, t tweak.Tweak) api.TweakView {
	return api.TweakView{Tweak: t, Kind: t.Kind().String(), Overridden: c.IsOverridden(t.Identifier)}
}

// reportSkipped prints sources that failed to load to the command's stderr.
func reportSkipped(cmd *cobra.Command, s *session.Session) {
	for _, err := range s.Skipped() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
}

// isTerminal checks if w is a terminal (for auto-detecting colored output).
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
