package cli

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/archive"
	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/store"
)

func newArchiveCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Update and inspect the month-partitioned heart-rate archive",
	}
	archiveCmd.AddCommand(newArchiveUpdateCmd(cfg, db), newArchiveCountCmd(cfg))
	return archiveCmd
}

func newArchiveUpdateCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge per-day cache blobs and activity snapshots into month buckets",
		Long: `update scans the fitbit cache directory for per-day heart-rate blobs,
adds heart-rate points from any cached activity snapshot that falls inside
each blob's month, and merges both into that month's parquet bucket.
Without --all, blobs older than 60 days whose bucket already exists are
skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArchiveUpdate(cfg, db, all)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "revisit every blob, not just the last 60 days")
	return cmd
}

func runArchiveUpdate(cfg *config.Config, db *store.DB, all bool) error {
	loc, err := time.LoadLocation(cfg.Report.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}

	blobsByMonth, err := archive.CacheBlobMap(
		cfg.Directories.FitbitCacheDir, cfg.Directories.FitbitArchiveDir, all, time.Now())
	if err != nil {
		return err
	}

	months := make([]string, 0, len(blobsByMonth))
	for month := range blobsByMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	for _, month := range months {
		var samples []archive.Sample
		for _, path := range blobsByMonth[month] {
			blobSamples, err := archive.ReadBlobSamples(path)
			if err != nil {
				return fmt.Errorf("bucket %s: %w", month, err)
			}
			samples = append(samples, blobSamples...)
		}

		snapSamples, err := snapshotSamplesForMonth(cfg, db, month)
		if err != nil {
			return fmt.Errorf("bucket %s: %w", month, err)
		}
		samples = append(samples, snapSamples...)

		added, err := archive.WriteBucket(cfg.Directories.FitbitArchiveDir, month, samples)
		if err != nil {
			return fmt.Errorf("writing bucket %s: %w", month, err)
		}
		if added > 0 {
			fmt.Fprintf(os.Stdout, "archive %s: %d new samples\n", month, added)
		}

		if err := recomputeDailyStatistics(db, samples, loc); err != nil {
			return fmt.Errorf("recomputing heart-rate statistics for %s: %w", month, err)
		}
	}
	return nil
}

// snapshotSamplesForMonth extracts heart-rate points from every cached
// activity snapshot whose begin_datetime falls inside month.
func snapshotSamplesForMonth(cfg *config.Config, db *store.DB, month string) ([]archive.Sample, error) {
	start, end, err := archive.MonthBounds(month)
	if err != nil {
		return nil, err
	}

	summaries, err := db.ListActivitySummaries(start, end.Add(-time.Second))
	if err != nil {
		return nil, err
	}

	var samples []archive.Sample
	for _, s := range summaries {
		path := model.SnapshotPath(cfg.Directories.CacheDir, s.Filename)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		activity, err := model.ReadSnapshot(path)
		if err != nil {
			return nil, err
		}
		for _, p := range activity.Points {
			if p.HeartRate == nil || *p.HeartRate <= 0 {
				continue
			}
			samples = append(samples, archive.Sample{
				Timestamp: p.Time.UTC().Unix(),
				BPM:       int32(*p.HeartRate),
			})
		}
	}
	return samples, nil
}

func newArchiveCountCmd(cfg *config.Config) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count archived heart-rate samples in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			startT, err := parseDateFlag(start, time.Now().AddDate(0, -1, 0))
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			endT, err := parseDateFlag(end, time.Now())
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}

			count, err := archive.CountOnly(cfg.Directories.FitbitArchiveDir, startT, endT)
			if err != nil {
				return err
			}
			fmt.Printf("%d samples between %s and %s\n", count, startT.Format("2006-01-02"), endT.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "range start (YYYY-MM-DD), defaults to 1 month ago")
	cmd.Flags().StringVar(&end, "end", "", "range end (YYYY-MM-DD), defaults to today")
	return cmd
}

func parseDateFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", value)
}
