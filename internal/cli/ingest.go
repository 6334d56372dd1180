package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/archive"
	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/parser"
	"github.com/ddboline/garmin-go/internal/sporttype"
	"github.com/ddboline/garmin-go/internal/store"
)

var ingestExtensions = map[string]bool{
	".fit": true, ".tcx": true, ".gz": true, ".gmn": true, ".txt": true,
}

func newIngestCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "ingest [path]",
		Short: "Parse activity files under a directory into the local store and heart-rate archive",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := dir
			if len(args) == 1 {
				root = args[0]
			}
			if root == "" {
				root = cfg.Directories.GPSDir
			}
			return runIngest(cfg, db, root)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to scan (defaults to directories.gps_dir)")
	return cmd
}

func runIngest(cfg *config.Config, db *store.DB, root string) error {
	loc, err := time.LoadLocation(cfg.Report.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}

	corr, err := loadCorrections(db, cfg.Directories.CorrectionFile)
	if err != nil {
		return fmt.Errorf("loading corrections: %w", err)
	}

	byMonth := make(map[string][]archive.Sample)
	var parsed, failed int

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !ingestExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		activity, err := parser.ParseFile(path, corr, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			failed++
			return nil
		}

		if err := db.UpsertActivitySummary(activitySummaryOf(activity)); err != nil {
			return fmt.Errorf("storing summary for %s: %w", path, err)
		}
		if err := activity.WriteSnapshot(cfg.Directories.CacheDir); err != nil {
			return fmt.Errorf("caching snapshot for %s: %w", path, err)
		}
		for _, p := range activity.Points {
			if p.HeartRate == nil || *p.HeartRate <= 0 {
				continue
			}
			month := p.Time.UTC().Format("2006-01")
			byMonth[month] = append(byMonth[month], archive.Sample{
				Timestamp: p.Time.UTC().Unix(),
				BPM:       int32(*p.HeartRate),
			})
		}
		parsed++
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walking %s: %w", root, walkErr)
	}

	for month, samples := range byMonth {
		added, err := archive.WriteBucket(cfg.Directories.FitbitArchiveDir, month, samples)
		if err != nil {
			return fmt.Errorf("writing heart-rate bucket %s: %w", month, err)
		}
		fmt.Fprintf(os.Stdout, "archive %s: %d new samples\n", month, added)

		if err := recomputeDailyStatistics(db, samples, loc); err != nil {
			return fmt.Errorf("recomputing heart-rate statistics for %s: %w", month, err)
		}
	}

	fmt.Fprintf(os.Stdout, "ingested %d files, skipped %d\n", parsed, failed)
	return nil
}

// recomputeDailyStatistics rolls this pass's newly ingested heart-rate
// samples up into heartrate_statistics_summary, one row per local
// calendar date.
func recomputeDailyStatistics(db *store.DB, samples []archive.Sample, loc *time.Location) error {
	for _, stat := range archive.DailyStatisticsFromSamples(samples, loc) {
		row := &store.HeartrateStatistics{
			Date:            stat.Date.Format("2006-01-02"),
			MinHeartrate:    int(stat.MinHeartRate),
			MaxHeartrate:    int(stat.MaxHeartRate),
			MeanHeartrate:   stat.MeanHeartRate,
			MedianHeartrate: stat.MedianHeartRate,
			StdevHeartrate:  stat.StdevHeartRate,
			NumberOfEntries: stat.NumberOfEntries,
		}
		if err := db.UpsertHeartrateStatistics(row); err != nil {
			return err
		}
	}
	return nil
}

// loadCorrections loads the correction JSON file (when present) and mirrors
// it into garmin_corrections_laps. When the JSON file is absent it falls
// back to whatever was persisted on a prior pass, so a correction overlay
// survives even once the source file is removed.
func loadCorrections(db *store.DB, jsonPath string) (model.CorrectionMap, error) {
	fromFile, err := parser.LoadCorrectionFile(jsonPath)
	if err != nil {
		return nil, err
	}
	if len(fromFile) > 0 {
		for key, c := range fromFile {
			row := &store.CorrectionLapRow{
				StartTime: key.StartTime,
				LapNumber: key.LapNumber,
				Distance:  c.Distance,
				Duration:  c.Duration,
			}
			if c.Sport != nil {
				s := c.Sport.String()
				row.Sport = &s
			}
			if err := db.UpsertCorrectionLap(row); err != nil {
				return nil, fmt.Errorf("persisting correction %s/%d: %w", key.StartTime, key.LapNumber, err)
			}
		}
		return fromFile, nil
	}

	rows, err := db.ListCorrectionLaps()
	if err != nil {
		return nil, err
	}
	corrections := make([]model.Correction, len(rows))
	for i, r := range rows {
		corrections[i] = model.Correction{
			StartTime: r.StartTime,
			LapNumber: r.LapNumber,
			Distance:  r.Distance,
			Duration:  r.Duration,
		}
		if r.Sport != nil {
			if s, ok := sporttype.Parse(*r.Sport); ok {
				corrections[i].Sport = &s
			}
		}
	}
	return model.NewCorrectionMap(corrections), nil
}

func activitySummaryOf(a *model.Activity) *store.ActivitySummary {
	s := &store.ActivitySummary{
		ID:            a.ID.String(),
		Filename:      a.Filename,
		BeginDateTime: a.BeginDateTime,
		Sport:         a.Sport.String(),
		TotalDistance: a.TotalDistance,
		TotalDuration: a.TotalDuration,
		TotalCalories: a.TotalCalories,
	}
	if a.TotalHRDis > 0 {
		hrDur, hrDis := a.TotalHRDur, a.TotalHRDis
		s.TotalHRDur, s.TotalHRDis = &hrDur, &hrDis
	}
	return s
}
