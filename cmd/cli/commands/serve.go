package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/api"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
	"github.com/jakechorley/calibration-allocator/pkg/db"
	"github.com/jakechorley/calibration-allocator/pkg/metrics"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the allocation HTTP API",
		Long:  "Serve the allocation HTTP API and, when a schedule is configured, re-run the optimizer at each occurrence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("address")
			if addr == "" {
				addr = app.Cfg.Server.Address
			}

			// The scheduler and the HTTP API must serialise against each other
			locks := services.NewRunLocks()

			server, err := api.NewServer(app.Database, app.Cfg, app.Logger, metrics.NewRegistry(), locks)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var wg sync.WaitGroup
			if app.Cfg.Schedule != nil {
				scheduler, err := scheduledOptimizer(app, locks)
				if err != nil {
					return err
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						app.Logger.Error("Scheduler stopped", zap.Error(err))
					}
					app.Logger.Info("Scheduler terminated")
				}()
			}

			err = server.Run(ctx, addr)
			stop()
			wg.Wait()
			return err
		},
	}

	cmd.Flags().String("address", "", "Listen address (overrides server.address in config)")

	return cmd
}

func scheduledOptimizer(app *AppContext, locks *services.RunLocks) (*services.Scheduler, error) {
	schedule := app.Cfg.Schedule
	filter := db.ItemFilter{Division: schedule.Division}

	return services.NewScheduler(schedule.RRule, func(ctx context.Context) error {
		result, err := services.OptimizeAllocation(ctx, app.Database, app.Cfg, app.Logger, services.OptimizeOptions{
			Filter: filter,
			Locks:  locks,
		})
		if err != nil {
			return fmt.Errorf("scheduled optimization failed: %w", err)
		}
		app.Logger.Info("Scheduled optimization finished",
			zap.String("run_id", result.RunID),
			zap.Int("items", result.ItemCount),
			zap.Bool("saved", result.Saved))
		return nil
	}, app.Logger)
}
