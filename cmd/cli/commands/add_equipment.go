package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// AddEquipmentCmd creates the addEquipment command
func AddEquipmentCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addEquipment <serial_number>",
		Short: "Add or update a piece of equipment awaiting calibration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			equipment := db.Equipment{SerialNumber: strings.TrimSpace(args[0])}
			if equipment.SerialNumber == "" {
				return fmt.Errorf("serial_number must not be empty")
			}
			equipment.Location, _ = cmd.Flags().GetString("location")
			equipment.CalibrationDue, _ = cmd.Flags().GetString("due")
			equipment.Division, _ = cmd.Flags().GetString("division")
			equipment.Description, _ = cmd.Flags().GetString("description")
			equipment.Workload, _ = cmd.Flags().GetInt("workload")

			app.Logger.Debug("addEquipment command",
				zap.String("serial_number", equipment.SerialNumber),
				zap.String("location", equipment.Location),
				zap.String("due", equipment.CalibrationDue))

			if err := app.Database.UpsertEquipment(app.Ctx, equipment); err != nil {
				return fmt.Errorf("failed to save equipment: %w", err)
			}

			fmt.Printf("✓ Equipment %s saved\n", equipment.SerialNumber)
			return nil
		},
	}

	cmd.Flags().String("location", "", "Calibration provider or site")
	cmd.Flags().String("due", "", "Calibration due date (YYYY-MM-DD)")
	cmd.Flags().String("division", "", "Owning division")
	cmd.Flags().String("description", "", "Free-text description")
	cmd.Flags().Int("workload", 0, "Prior workload carried with the item")

	return cmd
}
