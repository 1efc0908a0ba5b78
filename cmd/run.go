package cmd

import (
	"context"
	"time"

	"github.com/jpfraneto/rebrnd-backend-sub000/internal/config"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/metrics/prometheus"
	"github.com/jpfraneto/rebrnd-backend-sub000/internal/shutdown"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the airdrop service, refreshing the cohort on an interval",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		app, err := setupApp(cfg)
		if err != nil {
			panic(err)
		}
		l := app.Logger

		promShutdown := make(chan bool)
		if cfg.PrometheusConfig.Enabled {
			promServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, l)
			if err := promServer.Start(promShutdown); err != nil {
				l.Sugar().Errorw("Failed to start prometheus server", zap.Error(err))
			}
		}

		interval := cfg.AirdropConfig.RecalculationInterval
		if interval <= 0 {
			interval = 6 * time.Hour
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				result, err := app.DataService.RunBatchCalculation(ctx)
				if err != nil {
					l.Sugar().Errorw("Batch calculation failed", zap.Error(err))
				} else {
					l.Sugar().Infow("Batch calculation finished",
						zap.Int("successful", result.Successful),
						zap.Int("failed", result.Failed),
					)
				}
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
				}
			}
		}()

		l.Sugar().Infow("Started airdrop service", zap.Duration("recalculationInterval", interval))

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()
		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, func() {
			l.Sugar().Info("Shutting down...")
			cancel()
			if cfg.PrometheusConfig.Enabled {
				promShutdown <- true
			}
		}, time.Second*5, l)
	},
}
