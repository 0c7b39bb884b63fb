package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// AddWorkerCmd creates the addWorker command
func AddWorkerCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addWorker <worker_id> [name]",
		Short: "Add or update a calibration worker",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inactive, _ := cmd.Flags().GetBool("inactive")

			worker := db.Worker{ID: strings.TrimSpace(args[0]), Active: !inactive}
			if worker.ID == "" {
				return fmt.Errorf("worker_id must not be empty")
			}
			if len(args) == 2 {
				worker.Name = args[1]
			}

			app.Logger.Debug("addWorker command", zap.String("worker_id", worker.ID), zap.Bool("active", worker.Active))
			if err := app.Database.UpsertWorker(app.Ctx, worker); err != nil {
				return fmt.Errorf("failed to save worker: %w", err)
			}

			fmt.Printf("✓ Worker %s saved (active: %t)\n", worker.ID, worker.Active)
			return nil
		},
	}

	cmd.Flags().Bool("inactive", false, "Exclude the worker from future allocations")

	return cmd
}

// ListWorkersCmd creates the listWorkers command
func ListWorkersCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listWorkers",
		Short: "List all calibration workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, err := app.Database.ListWorkers(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to list workers: %w", err)
			}

			fmt.Printf("\nFound %d workers:\n\n", len(workers))
			for _, w := range workers {
				status := "active"
				if !w.Active {
					status = "inactive"
				}
				name := w.Name
				if name == "" {
					name = "—"
				}
				fmt.Printf("- %s (%s) - %s\n", w.ID, name, status)
			}

			return nil
		},
	}
}
