package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/calibration-allocator/pkg/core/services"
)

// ListEquipmentCmd creates the listEquipment command
func ListEquipmentCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listEquipment",
		Short: "List equipment awaiting calibration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := filterFromFlags(cmd)
			if err := services.ValidateFilter(app.Cfg, filter); err != nil {
				return err
			}

			equipment, err := app.Database.ListEquipment(app.Ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list equipment: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFound %d items (dataset %s):\n\n", len(equipment), filter.Dataset())
			for _, e := range equipment {
				worker := e.AssignedWorker
				if worker == "" {
					worker = "unassigned"
				}
				fmt.Fprintf(out, "- %s [%s] %s - due %s - %s\n", e.SerialNumber, e.Division, e.Location, e.CalibrationDue, worker)
			}

			return nil
		},
	}

	addFilterFlags(cmd)

	return cmd
}
