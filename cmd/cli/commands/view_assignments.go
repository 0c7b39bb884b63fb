package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// ViewAssignmentsCmd creates the viewAssignments command
func ViewAssignmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewAssignments [run_id]",
		Short: "Show the assignments of a saved run (defaults to the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}

			result, err := services.ViewAssignments(app.Ctx, app.Database, app.Logger, runID)
			if err != nil {
				return err
			}

			fmt.Printf("\n📋 Allocation Run\n\n")
			fmt.Printf("Run ID:  %s\n", result.Run.ID)
			fmt.Printf("Dataset: %s\n", result.Run.Dataset)
			fmt.Printf("Created: %s\n", result.Run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Items:   %d\n\n", len(result.Assignments))

			printTargets(os.Stdout, result.WorkerCounts, services.ComputeWorkloadStats(result.WorkerCounts))
			fmt.Println()

			for _, a := range result.Assignments {
				fmt.Printf("  %-20s → %s\n", a.SerialNumber, a.WorkerID)
			}
			fmt.Println()

			return nil
		},
	}
}
