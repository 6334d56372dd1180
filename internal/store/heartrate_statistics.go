package store

import "database/sql"

// UpsertHeartrateStatistics records one day's aggregated heart-rate
// statistics, replacing any existing row for that date.
func (db *DB) UpsertHeartrateStatistics(s *HeartrateStatistics) error {
	_, err := db.Exec(`
		INSERT INTO heartrate_statistics_summary (
			date, min_heartrate, max_heartrate, mean_heartrate, median_heartrate,
			stdev_heartrate, number_of_entries
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			min_heartrate = excluded.min_heartrate,
			max_heartrate = excluded.max_heartrate,
			mean_heartrate = excluded.mean_heartrate,
			median_heartrate = excluded.median_heartrate,
			stdev_heartrate = excluded.stdev_heartrate,
			number_of_entries = excluded.number_of_entries
	`, s.Date, s.MinHeartrate, s.MaxHeartrate, s.MeanHeartrate, s.MedianHeartrate,
		s.StdevHeartrate, s.NumberOfEntries)
	return err
}

// GetHeartrateStatistics retrieves one day's statistics row, or nil if
// absent.
func (db *DB) GetHeartrateStatistics(date string) (*HeartrateStatistics, error) {
	row := db.QueryRow(`
		SELECT date, min_heartrate, max_heartrate, mean_heartrate, median_heartrate,
			stdev_heartrate, number_of_entries
		FROM heartrate_statistics_summary
		WHERE date = ?
	`, date)

	var s HeartrateStatistics
	err := row.Scan(&s.Date, &s.MinHeartrate, &s.MaxHeartrate, &s.MeanHeartrate,
		&s.MedianHeartrate, &s.StdevHeartrate, &s.NumberOfEntries)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListHeartrateStatistics returns every row between start and end dates
// (both "YYYY-MM-DD", inclusive), ordered ascending.
func (db *DB) ListHeartrateStatistics(start, end string) ([]HeartrateStatistics, error) {
	rows, err := db.Query(`
		SELECT date, min_heartrate, max_heartrate, mean_heartrate, median_heartrate,
			stdev_heartrate, number_of_entries
		FROM heartrate_statistics_summary
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HeartrateStatistics
	for rows.Next() {
		var s HeartrateStatistics
		if err := rows.Scan(&s.Date, &s.MinHeartrate, &s.MaxHeartrate, &s.MeanHeartrate,
			&s.MedianHeartrate, &s.StdevHeartrate, &s.NumberOfEntries); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
