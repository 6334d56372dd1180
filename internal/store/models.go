package store

import "time"

// ActivitySummary is the persisted row shape of garmin_summary, derived
// from a canonical model.Activity after parsing and correction overlay.
type ActivitySummary struct {
	ID            string
	Filename      string
	BeginDateTime time.Time
	Sport         string
	TotalDistance float64
	TotalDuration float64
	TotalCalories int
	TotalHRDur    *float64
	TotalHRDis    *float64
}

// CorrectionLapRow is the persisted row shape of garmin_corrections_laps.
type CorrectionLapRow struct {
	StartTime time.Time
	LapNumber int
	Sport     *string
	Distance  *float64
	Duration  *float64
}

// ScaleMeasurement is the persisted row shape of scale_measurements.
type ScaleMeasurement struct {
	ID                int64
	DateTime          time.Time
	Mass              float64
	FatPct            float64
	WaterPct          float64
	MusclePct         float64
	BonePct           float64
	ConnectPrimaryKey *int64
}

// HeartrateStatistics is one day's aggregated heart-rate statistics.
type HeartrateStatistics struct {
	Date             string // YYYY-MM-DD
	MinHeartrate     int
	MaxHeartrate     int
	MeanHeartrate    float64
	MedianHeartrate  float64
	StdevHeartrate   float64
	NumberOfEntries  int
}

// KeyItemCache is one row of the sync-state table: the single
// source of truth for which keys need uploading or downloading, upserted by
// primary key (s3_key, s3_bucket).
type KeyItemCache struct {
	S3Key          string
	S3Bucket       string
	S3Etag         *string
	S3Timestamp    *int64
	S3Size         *int64
	LocalEtag      *string
	LocalTimestamp *int64
	LocalSize      *int64
	DoDownload     bool
	DoUpload       bool
}
