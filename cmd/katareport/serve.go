package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katachat/katareport/api"
)

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}

		svc, err := buildServices(nil)
		if err != nil {
			return err
		}

		srv, err := api.NewServer(api.Deps{
			Config:     cfg,
			Analyzer:   svc.analyzer,
			Registry:   svc.registry,
			Collectors: svc.stats,
			Logger:     logger,
			Version:    version,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.ListenAndServe(gctx, cfg.API.Addr())
		})
		if svc.provider != nil {
			g.Go(func() error {
				pingCtx, cancel := context.WithTimeout(gctx, cfg.LLM.Timeout())
				defer cancel()
				if err := svc.provider.Ping(pingCtx); err != nil {
					logger.Warn("llm provider not reachable", zap.String("provider", svc.provider.Name()), zap.Error(err))
				}
				return nil
			})
		}
		err = g.Wait()

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Delivery.Timeout()+5*time.Second)
		defer cancel()
		if derr := svc.analyzer.Drain(drainCtx); derr != nil {
			logger.Warn("pending deliveries abandoned", zap.Error(derr))
		}
		return err
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}
