package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/dining-concierge/pkg/config"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		cancel()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "dining-concierge",
		Short:         "Restaurant suggestion chatbot backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configx.SetEnvFile(envFile)
			logx.Init(*configx.MustNew[logx.Config]("LOG"))
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default ./.env when present)")

	root.AddCommand(newDialogCommand())
	root.AddCommand(newWorkerCommand())
	return root
}
