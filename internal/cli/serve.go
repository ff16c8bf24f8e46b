package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tweaks-labs/tweaks/internal/api"
	"github.com/tweaks-labs/tweaks/internal/config"
	"github.com/tweaks-labs/tweaks/internal/coordinator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve tweaks over HTTP",
	Long: `Start the HTTP API. It stops gracefully on SIGINT or SIGTERM.

  GET    /healthz
  GET    /tweaks, /sections, /sources
  GET    /tweaks/{id}
  PUT    /tweaks/{id}   {"value": ...}
  DELETE /tweaks/{id}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v := state.cfg.Viper()
		if err := v.BindPFlag(config.KeyServeAddr, cmd.Flags().Lookup("addr")); err != nil {
			return err
		}
		addr := v.GetString(config.KeyServeAddr)
		st, err := settings()
		if err != nil {
			return err
		}

		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		reportSkipped(cmd, s)

		log := state.log
		unsubscribe := s.Coordinator.Subscribe(func(ch coordinator.Change) {
			log.Info("tweak changed",
				zap.String("id", ch.Identifier),
				zap.Stringer("old", ch.Old),
				zap.Stringer("new", ch.New),
				zap.Bool("reset", ch.Reset))
		})
		defer unsubscribe()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		h := api.NewHandler(api.Deps{
			Coordinator:    s.Coordinator,
			Messages:       state.msgs,
			Log:            log,
			AllowedOrigins: st.Serve.CORSOrigins,
		})
		fmt.Fprintf(cmd.ErrOrStderr(), "%s API listening on http://%s\n", rootCmd.Name(), addr)
		return api.ListenAndServe(ctx, addr, h, log)
	},
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultServeAddr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}
