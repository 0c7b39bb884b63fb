package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/calibration-allocator/pkg/db"
)

// equipmentQuery builds the filtered equipment select with positional arguments
func equipmentQuery(filter db.ItemFilter) (string, []any) {
	var where []string
	var args []any
	add := func(clause string, value string) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filter.Division != "" {
		add("division = $%d", filter.Division)
	}
	if filter.DueFrom != "" {
		add("calibration_due >= $%d", filter.DueFrom)
	}
	if filter.DueTo != "" {
		add("calibration_due <= $%d", filter.DueTo)
	}

	query := "SELECT serial_number, description, division, location, calibration_due, workload, assigned_worker FROM equipment"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq"

	return query, args
}

// ListEquipment retrieves the equipment matching filter in insertion order
func (d *DB) ListEquipment(ctx context.Context, filter db.ItemFilter) ([]db.Equipment, error) {
	query, args := equipmentQuery(filter)

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	var equipment []db.Equipment
	for rows.Next() {
		var e db.Equipment
		var assigned *string
		if err := rows.Scan(&e.SerialNumber, &e.Description, &e.Division, &e.Location, &e.CalibrationDue, &e.Workload, &assigned); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		if assigned != nil {
			e.AssignedWorker = *assigned
		}
		equipment = append(equipment, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment: %w", err)
	}

	return equipment, nil
}

// UpsertEquipment inserts a piece of equipment or refreshes its details, keeping its assignment
func (d *DB) UpsertEquipment(ctx context.Context, e db.Equipment) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO equipment (serial_number, description, division, location, calibration_due, workload)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (serial_number) DO UPDATE SET
			description = EXCLUDED.description,
			division = EXCLUDED.division,
			location = EXCLUDED.location,
			calibration_due = EXCLUDED.calibration_due,
			workload = EXCLUDED.workload
	`, e.SerialNumber, e.Description, e.Division, e.Location, e.CalibrationDue, e.Workload)
	if err != nil {
		return fmt.Errorf("failed to upsert equipment: %w", err)
	}
	return nil
}
