package store

import "database/sql"

// migrate runs all database migrations needed for a fresh database.
func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS garmin_summary (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL UNIQUE,
			begin_datetime TEXT NOT NULL,
			sport TEXT NOT NULL,
			total_distance REAL NOT NULL,
			total_duration REAL NOT NULL,
			total_calories INTEGER NOT NULL,
			total_hr_dur REAL,
			total_hr_dis REAL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_garmin_summary_begin ON garmin_summary(begin_datetime)`,
		`CREATE INDEX IF NOT EXISTS idx_garmin_summary_sport ON garmin_summary(sport)`,

		`CREATE TABLE IF NOT EXISTS garmin_corrections_laps (
			start_time TEXT NOT NULL,
			lap_number INTEGER NOT NULL,
			sport TEXT,
			distance REAL,
			duration REAL,
			PRIMARY KEY (start_time, lap_number)
		)`,

		`CREATE TABLE IF NOT EXISTS scale_measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			datetime TEXT NOT NULL UNIQUE,
			mass REAL NOT NULL,
			fat_pct REAL NOT NULL,
			water_pct REAL NOT NULL,
			muscle_pct REAL NOT NULL,
			bone_pct REAL NOT NULL,
			connect_primary_key INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS heartrate_statistics_summary (
			date TEXT PRIMARY KEY,
			min_heartrate INTEGER NOT NULL,
			max_heartrate INTEGER NOT NULL,
			mean_heartrate REAL NOT NULL,
			median_heartrate REAL NOT NULL,
			stdev_heartrate REAL NOT NULL,
			number_of_entries INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS key_item_cache (
			s3_key TEXT NOT NULL,
			s3_bucket TEXT NOT NULL,
			s3_etag TEXT,
			s3_timestamp INTEGER,
			s3_size INTEGER,
			local_etag TEXT,
			local_timestamp INTEGER,
			local_size INTEGER,
			do_download INTEGER NOT NULL DEFAULT 0,
			do_upload INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (s3_key, s3_bucket)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_key_item_cache_flags ON key_item_cache(do_download, do_upload)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
