package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"foodtruck-market/internal/scheduler"
	"foodtruck-market/internal/wire"
	"foodtruck-market/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var noScheduler bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		logger.Info("Starting application",
			zap.String("app", config.App.Name),
			zap.String("port", config.App.Port),
			zap.Bool("debug", config.App.Debug),
		)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApplication(config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		if !noScheduler {
			jobs, err := startScheduler(app, config, logger)
			if err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), config.Sweeper.LeaseTTL)
				defer cancel()
				jobs.Stop(stopCtx)
			}()
		}

		// Wire all dependencies
		wired := wire.Wiring(app.db, app.repo, app.service, app.metrics, config, logger)

		return APIServer(ctx, wired.Router, config.App.Port, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "Serve HTTP only; run sweeps from a separate process")
}

func startScheduler(app *application, config *utils.Config, logger *zap.Logger) (*scheduler.Scheduler, error) {
	var lease scheduler.Lease = scheduler.NewLocalLease()
	if config.Redis.Addr != "" {
		redisLease, err := scheduler.NewRedisLease(config.Redis, config.App.Name, logger)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, redisLease.Close)
		lease = redisLease
	}

	jobs := scheduler.New(lease, config.Sweeper.LeaseTTL, logger)

	err := jobs.Add(config.Sweeper.Schedule, "hold-sweep", func(ctx context.Context) error {
		_, err := app.service.Sweeper.Sweep(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = jobs.Add("@every 1h", "session-cleanup", func(ctx context.Context) error {
		removed, err := app.repo.Session.CleanExpiredSessions(ctx)
		if err == nil && removed > 0 {
			logger.Info("Expired sessions removed", zap.Int64("count", removed))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	jobs.Start()
	logger.Info("Scheduler started",
		zap.String("sweep_schedule", config.Sweeper.Schedule),
		zap.Duration("lease_ttl", config.Sweeper.LeaseTTL),
	)
	return jobs, nil
}
