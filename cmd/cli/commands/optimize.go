package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/core/allocator"
	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// OptimizeCmd creates the optimize command
func OptimizeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Allocate equipment awaiting calibration to workers",
		Long:  "Score target workloads, assign every item to a worker and save the run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			forceCommit, _ := cmd.Flags().GetBool("force-commit")
			showItems, _ := cmd.Flags().GetBool("show-items")

			app.Logger.Debug("optimize command",
				zap.Bool("dry_run", dryRun),
				zap.Bool("force_commit", forceCommit))

			result, err := services.OptimizeAllocation(app.Ctx, app.Database, app.Cfg, app.Logger, services.OptimizeOptions{
				DryRun:      dryRun,
				ForceCommit: forceCommit,
				Filter:      filterFromFlags(cmd),
			})
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			fmt.Printf("\n🎯 Allocation Results\n\n")
			if result.RunID != "" {
				fmt.Printf("Run ID:  %s\n", result.RunID)
			}
			fmt.Printf("Dataset: %s\n", result.Dataset)
			fmt.Printf("Items:   %d\n", result.ItemCount)
			fmt.Printf("Workers: %d\n", len(result.Workers))
			switch {
			case result.ItemCount == 0:
				fmt.Printf("Status:  💤 NOTHING TO ALLOCATE\n\n")
				return nil
			case dryRun:
				fmt.Printf("Mode:    🧪 DRY RUN (not saved)\n")
			case result.Success:
				fmt.Printf("Status:  ✅ SUCCESS (saved to database)\n")
			case forceCommit:
				fmt.Printf("Status:  ⚠️  FORCED (saved despite validation errors)\n")
			default:
				fmt.Printf("Status:  ❌ FAILED (not saved)\n")
			}
			fmt.Println()

			printValidationErrors(os.Stdout, result.ValidationErrors)

			fmt.Printf("👷 Assigned Workloads:\n\n")
			printTargets(os.Stdout, allocator.CountAssignments(result.Workers, result.Assignments), result.Stats)
			fmt.Println()

			if showItems {
				fmt.Printf("📋 Assignments:\n\n")
				for _, a := range result.Assignments {
					fmt.Printf("  %-20s → %s\n", a.SerialNumber, a.Worker)
				}
				fmt.Println()
			}

			switch {
			case dryRun:
				fmt.Println("💡 This was a dry run. Use without --dry-run to save the allocation.")
			case result.Success:
				fmt.Println("✅ Allocation has been saved to the database.")
			case forceCommit:
				fmt.Println("⚠️  Allocation was saved despite validation errors (--force-commit).")
			default:
				fmt.Println("❌ Allocation was not saved due to validation errors.")
				fmt.Println("💡 Use --force-commit to save anyway, or fix the issues and try again.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to database")
	cmd.Flags().Bool("force-commit", false, "Save the allocation even if validation fails")
	cmd.Flags().Bool("show-items", false, "Print every item assignment")
	addFilterFlags(cmd)

	return cmd
}
