package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// UpsertActivitySummary inserts or updates a garmin_summary row, keyed by
// filename (re-ingesting the same source file updates its summary in
// place).
func (db *DB) UpsertActivitySummary(a *ActivitySummary) error {
	_, err := db.Exec(`
		INSERT INTO garmin_summary (
			id, filename, begin_datetime, sport, total_distance, total_duration,
			total_calories, total_hr_dur, total_hr_dis, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(filename) DO UPDATE SET
			begin_datetime = excluded.begin_datetime,
			sport = excluded.sport,
			total_distance = excluded.total_distance,
			total_duration = excluded.total_duration,
			total_calories = excluded.total_calories,
			total_hr_dur = excluded.total_hr_dur,
			total_hr_dis = excluded.total_hr_dis,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.Filename, a.BeginDateTime.Format(time.RFC3339), a.Sport,
		a.TotalDistance, a.TotalDuration, a.TotalCalories, a.TotalHRDur, a.TotalHRDis,
	)
	return err
}

// GetActivitySummary retrieves a garmin_summary row by id.
func (db *DB) GetActivitySummary(id string) (*ActivitySummary, error) {
	row := db.QueryRow(`
		SELECT id, filename, begin_datetime, sport, total_distance, total_duration,
			total_calories, total_hr_dur, total_hr_dis
		FROM garmin_summary
		WHERE id = ?
	`, id)
	return scanActivitySummary(row)
}

// ListActivitySummaries returns every garmin_summary row whose begin_datetime
// falls in [start, end], ordered ascending.
func (db *DB) ListActivitySummaries(start, end time.Time) ([]ActivitySummary, error) {
	rows, err := db.Query(`
		SELECT id, filename, begin_datetime, sport, total_distance, total_duration,
			total_calories, total_hr_dur, total_hr_dis
		FROM garmin_summary
		WHERE begin_datetime >= ? AND begin_datetime <= ?
		ORDER BY begin_datetime ASC
	`, start.Format(time.RFC3339), end.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivitySummaries(rows)
}

// ListActivitySummariesBySport returns every garmin_summary row for any of
// the given sports, ordered ascending by begin_datetime. The report package
// does not call it; its sport filter is applied in memory by report.Matches.
func (db *DB) ListActivitySummariesBySport(sports []string) ([]ActivitySummary, error) {
	if len(sports) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(sports))
	args := make([]interface{}, len(sports))
	for i, s := range sports {
		placeholders[i] = "?"
		args[i] = s
	}

	query := `
		SELECT id, filename, begin_datetime, sport, total_distance, total_duration,
			total_calories, total_hr_dur, total_hr_dis
		FROM garmin_summary
		WHERE sport IN (` + strings.Join(placeholders, ",") + `)
		ORDER BY begin_datetime ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivitySummaries(rows)
}

// GetActivitySummaryByFilename looks up a summary by its source filename,
// returning ErrActivityNotFound when no row has that filename.
func (db *DB) GetActivitySummaryByFilename(filename string) (*ActivitySummary, error) {
	row := db.QueryRow(`
		SELECT id, filename, begin_datetime, sport, total_distance, total_duration,
			total_calories, total_hr_dur, total_hr_dis
		FROM garmin_summary
		WHERE filename = ?
	`, filename)
	return scanActivitySummary(row)
}

// CountActivitySummaries returns the total number of ingested activities.
func (db *DB) CountActivitySummaries() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM garmin_summary").Scan(&count)
	return count, err
}

func scanActivitySummary(row *sql.Row) (*ActivitySummary, error) {
	var a ActivitySummary
	var begin string
	err := row.Scan(&a.ID, &a.Filename, &begin, &a.Sport, &a.TotalDistance,
		&a.TotalDuration, &a.TotalCalories, &a.TotalHRDur, &a.TotalHRDis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	a.BeginDateTime, err = time.Parse(time.RFC3339, begin)
	if err != nil {
		return nil, fmt.Errorf("parsing begin_datetime %q: %w", begin, err)
	}
	return &a, nil
}

func scanActivitySummaries(rows *sql.Rows) ([]ActivitySummary, error) {
	var out []ActivitySummary
	for rows.Next() {
		var a ActivitySummary
		var begin string
		if err := rows.Scan(&a.ID, &a.Filename, &begin, &a.Sport, &a.TotalDistance,
			&a.TotalDuration, &a.TotalCalories, &a.TotalHRDur, &a.TotalHRDis); err != nil {
			return nil, err
		}
		var parseErr error
		a.BeginDateTime, parseErr = time.Parse(time.RFC3339, begin)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing begin_datetime %q: %w", begin, parseErr)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
