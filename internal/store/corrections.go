package store

import (
	"time"
)

// UpsertCorrectionLap persists one garmin_corrections_laps row, keyed by
// (start_time, lap_number).
func (db *DB) UpsertCorrectionLap(c *CorrectionLapRow) error {
	_, err := db.Exec(`
		INSERT INTO garmin_corrections_laps (start_time, lap_number, sport, distance, duration)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(start_time, lap_number) DO UPDATE SET
			sport = excluded.sport,
			distance = excluded.distance,
			duration = excluded.duration
	`, c.StartTime.Format(time.RFC3339), c.LapNumber, c.Sport, c.Distance, c.Duration)
	return err
}

// ListCorrectionLaps loads every garmin_corrections_laps row, for building
// the in-memory CorrectionMap used at ingest time.
func (db *DB) ListCorrectionLaps() ([]CorrectionLapRow, error) {
	rows, err := db.Query(`
		SELECT start_time, lap_number, sport, distance, duration FROM garmin_corrections_laps
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CorrectionLapRow
	for rows.Next() {
		var c CorrectionLapRow
		var start string
		if err := rows.Scan(&start, &c.LapNumber, &c.Sport, &c.Distance, &c.Duration); err != nil {
			return nil, err
		}
		c.StartTime, err = time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
