package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InsertScaleMeasurement records a new scale_measurements row, rejecting duplicate timestamps since
// datetime is unique.
func (db *DB) InsertScaleMeasurement(m *ScaleMeasurement) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO scale_measurements (datetime, mass, fat_pct, water_pct, muscle_pct, bone_pct, connect_primary_key)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.DateTime.Format(time.RFC3339), m.Mass, m.FatPct, m.WaterPct, m.MusclePct, m.BonePct, m.ConnectPrimaryKey)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetScaleMeasurement retrieves a scale_measurements row by id.
func (db *DB) GetScaleMeasurement(id int64) (*ScaleMeasurement, error) {
	row := db.QueryRow(`
		SELECT id, datetime, mass, fat_pct, water_pct, muscle_pct, bone_pct, connect_primary_key
		FROM scale_measurements
		WHERE id = ?
	`, id)
	return scanScaleMeasurement(row)
}

// ListScaleMeasurements returns rows in [start, end], ordered ascending by
// datetime.
func (db *DB) ListScaleMeasurements(start, end time.Time) ([]ScaleMeasurement, error) {
	rows, err := db.Query(`
		SELECT id, datetime, mass, fat_pct, water_pct, muscle_pct, bone_pct, connect_primary_key
		FROM scale_measurements
		WHERE datetime >= ? AND datetime <= ?
		ORDER BY datetime ASC
	`, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScaleMeasurement
	for rows.Next() {
		m, err := scanScaleMeasurementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanScaleMeasurement(row *sql.Row) (*ScaleMeasurement, error) {
	var m ScaleMeasurement
	var dt string
	err := row.Scan(&m.ID, &dt, &m.Mass, &m.FatPct, &m.WaterPct, &m.MusclePct, &m.BonePct, &m.ConnectPrimaryKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScaleMeasurementNotFound
	}
	if err != nil {
		return nil, err
	}
	m.DateTime, err = time.Parse(time.RFC3339, dt)
	if err != nil {
		return nil, fmt.Errorf("parsing datetime %q: %w", dt, err)
	}
	return &m, nil
}

func scanScaleMeasurementRow(rows *sql.Rows) (*ScaleMeasurement, error) {
	var m ScaleMeasurement
	var dt string
	if err := rows.Scan(&m.ID, &dt, &m.Mass, &m.FatPct, &m.WaterPct, &m.MusclePct, &m.BonePct, &m.ConnectPrimaryKey); err != nil {
		return nil, err
	}
	var err error
	m.DateTime, err = time.Parse(time.RFC3339, dt)
	if err != nil {
		return nil, fmt.Errorf("parsing datetime %q: %w", dt, err)
	}
	return &m, nil
}
