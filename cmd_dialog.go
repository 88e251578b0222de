package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/dining-concierge/dining/dialog"
	"github.com/tanpawarit/dining-concierge/dining/httpapi"
	configx "github.com/tanpawarit/dining-concierge/pkg/config"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
)

func newDialogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialog",
		Short: "Serve the dialog code hook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logx.Component("main")

			dialogCfg, err := configx.New[dialog.Config]("DIALOG")
			if err != nil {
				return fmt.Errorf("load dialog config: %w", err)
			}
			httpCfg, err := configx.New[httpapi.Config]("HTTP")
			if err != nil {
				return fmt.Errorf("load http config: %w", err)
			}

			env := newEnvironment()
			defer env.Close()

			producer, err := env.Producer(ctx)
			if err != nil {
				return err
			}
			controller, err := dialog.New(producer, *dialogCfg)
			if err != nil {
				return err
			}

			handler := httpapi.NewRouter(*httpCfg, httpapi.Deps{
				Dialog: controller,
				Logger: logx.Component("http"),
			})
			logger.Info().Str("addr", httpCfg.Addr).Msg("dialog hook listening")
			return httpapi.ListenAndServe(ctx, httpapi.NewServer(*httpCfg, handler), httpCfg.ShutdownTimeout)
		},
	}
}
