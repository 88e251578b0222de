package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/dining-concierge/dining/fulfillment"
	"github.com/tanpawarit/dining-concierge/dining/httpapi"
	configx "github.com/tanpawarit/dining-concierge/pkg/config"
	logx "github.com/tanpawarit/dining-concierge/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func newWorkerCommand() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the fulfillment worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logx.Component("main")

			workerCfg, err := configx.New[fulfillment.Config]("WORKER")
			if err != nil {
				return fmt.Errorf("load worker config: %w", err)
			}

			env := newEnvironment()
			defer env.Close()

			worker, err := env.Worker(ctx, *workerCfg)
			if err != nil {
				return err
			}

			if once {
				report, err := worker.ProcessBatch(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report.BatchResponse())
			}

			httpCfg, err := configx.New[httpapi.Config]("HTTP")
			if err != nil {
				return fmt.Errorf("load http config: %w", err)
			}
			handler := httpapi.NewRouter(*httpCfg, httpapi.Deps{
				Worker: worker,
				Logger: logx.Component("http"),
			})
			srv := httpapi.NewServer(*httpCfg, handler)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info().Str("addr", httpCfg.Addr).Msg("worker http listening")
				return httpapi.ListenAndServe(gctx, srv, httpCfg.ShutdownTimeout)
			})
			g.Go(func() error {
				return worker.Run(gctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "process a single batch, print the batch-failure response and exit")
	return cmd
}
