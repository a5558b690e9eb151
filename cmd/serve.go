package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"warehouse-sync/internal/admin"
	"warehouse-sync/internal/engine"
	"warehouse-sync/internal/runner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := engine.NewMetrics(reg)

		orch := newOrchestrator(metrics)
		run := runner.New(orch, cfg.Sync.Interval, cfg.Sync.DailyAt, logger)

		srv := &http.Server{
			Addr:    cfg.Admin.Listen,
			Handler: admin.NewServer(run, reg, logger),
		}
		errc := make(chan error, 1)
		go func() {
			logger.Info().Str("listen", cfg.Admin.Listen).Msg("admin api listening")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		go run.Start(ctx)

		select {
		case <-ctx.Done():
		case err := <-errc:
			return err
		}

		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
