package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// ScoreCmd creates the score command
func ScoreCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Preview target workloads without assigning equipment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := filterFromFlags(cmd)

			result, err := services.ScoreWorkload(app.Ctx, app.Database, app.Cfg, app.Logger, filter)
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}

			fmt.Printf("\n📊 Target Workloads\n\n")
			fmt.Printf("Dataset: %s\n", filter.Dataset())
			fmt.Printf("Items:   %d\n", result.ItemCount)
			fmt.Printf("Workers: %d\n\n", len(result.Workers))

			if len(result.Targets) == 0 {
				fmt.Println("No active workers - nothing to score.")
				return nil
			}

			printValidationErrors(os.Stdout, result.ValidationErrors)
			printTargets(os.Stdout, result.Targets, result.Stats)
			fmt.Println()

			return nil
		},
	}

	addFilterFlags(cmd)

	return cmd
}
