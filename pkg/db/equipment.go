package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ListEquipment returns the equipment matching filter in insertion order
func (db *DB) ListEquipment(ctx context.Context, filter ItemFilter) ([]Equipment, error) {
	var where []string
	var args []any
	if filter.Division != "" {
		where = append(where, "division = ?")
		args = append(args, filter.Division)
	}
	if filter.DueFrom != "" {
		where = append(where, "calibration_due >= ?")
		args = append(args, filter.DueFrom)
	}
	if filter.DueTo != "" {
		where = append(where, "calibration_due <= ?")
		args = append(args, filter.DueTo)
	}

	query := `
		SELECT serial_number, description, division, location, calibration_due, workload, assigned_worker
		FROM equipment`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY rowid"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query equipment: %w", err)
	}
	defer rows.Close()

	var equipment []Equipment
	for rows.Next() {
		var e Equipment
		var assigned sql.NullString
		if err := rows.Scan(&e.SerialNumber, &e.Description, &e.Division, &e.Location, &e.CalibrationDue, &e.Workload, &assigned); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		e.AssignedWorker = assigned.String
		equipment = append(equipment, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment: %w", err)
	}

	return equipment, nil
}

// UpsertEquipment inserts a piece of equipment or refreshes its details.
// The current assignment is left untouched.
func (db *DB) UpsertEquipment(ctx context.Context, e Equipment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO equipment (serial_number, description, division, location, calibration_due, workload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (serial_number) DO UPDATE SET
			description = excluded.description,
			division = excluded.division,
			location = excluded.location,
			calibration_due = excluded.calibration_due,
			workload = excluded.workload
	`, e.SerialNumber, e.Description, e.Division, e.Location, e.CalibrationDue, e.Workload)
	if err != nil {
		return fmt.Errorf("failed to upsert equipment: %w", err)
	}
	return nil
}
