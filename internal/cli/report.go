package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ddboline/garmin-go/internal/config"
	"github.com/ddboline/garmin-go/internal/report"
	"github.com/ddboline/garmin-go/internal/store"
)

func newReportCmd(cfg *config.Config, db *store.DB) *cobra.Command {
	var heartrate bool

	cmd := &cobra.Command{
		Use:   "report [tokens...]",
		Short: "Print a grouped activity report from free-text filter tokens",
		Long: `report compiles its arguments into a filter (a level keyword like
"day"/"week"/"month"/"year"/"file", a sport name, "latest", an ISO week
("2020w10"), a date, year-month or year, an RFC3339 timestamp, or a filename)
and prints the grouped totals. With no arguments, report shows one row per
file. --heartrate instead prints the daily heartrate_statistics_summary rows
for the same date range.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if heartrate {
				return runHeartrateReport(db, args)
			}
			return runReport(cfg, db, args)
		},
	}
	cmd.Flags().BoolVar(&heartrate, "heartrate", false, "print daily heart-rate statistics instead of activity totals")
	return cmd
}

// runHeartrateReport prints heartrate_statistics_summary rows. args may
// contain zero, one ("YYYY-MM-DD") or two date bounds; an empty range
// defaults to the last 30 days.
func runHeartrateReport(db *store.DB, args []string) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	switch len(args) {
	case 0:
	case 1:
		s, err := db.GetHeartrateStatistics(args[0])
		if err != nil {
			return fmt.Errorf("loading heart-rate statistics for %s: %w", args[0], err)
		}
		if s == nil {
			fmt.Println("no heart-rate statistics for that date")
			return nil
		}
		printHeartrateStatistics([]store.HeartrateStatistics{*s})
		return nil
	case 2:
		var err error
		start, err = time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("parsing start date %q: %w", args[0], err)
		}
		end, err = time.Parse("2006-01-02", args[1])
		if err != nil {
			return fmt.Errorf("parsing end date %q: %w", args[1], err)
		}
	default:
		return fmt.Errorf("--heartrate takes zero, one, or two date arguments")
	}

	rows, err := db.ListHeartrateStatistics(start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("listing heart-rate statistics: %w", err)
	}
	if len(rows) == 0 {
		fmt.Println("no heart-rate statistics in range")
		return nil
	}
	printHeartrateStatistics(rows)
	return nil
}

func printHeartrateStatistics(rows []store.HeartrateStatistics) {
	fmt.Printf("%-12s %5s %5s %7s %7s %7s %7s\n", "date", "min", "max", "mean", "median", "stdev", "n")
	for _, s := range rows {
		fmt.Printf("%-12s %5d %5d %7.1f %7.1f %7.1f %7d\n",
			s.Date, s.MinHeartrate, s.MaxHeartrate, s.MeanHeartrate, s.MedianHeartrate, s.StdevHeartrate, s.NumberOfEntries)
	}
}

func runReport(cfg *config.Config, db *store.DB, tokens []string) error {
	loc, err := time.LoadLocation(cfg.Report.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}

	summaries, err := db.ListActivitySummaries(time.Unix(0, 0), time.Now().Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("listing activities: %w", err)
	}

	filenames := make(map[string]bool, len(summaries))
	for _, s := range summaries {
		filenames[s.Filename] = true
	}

	q := report.Compile(tokens, filenames)
	matched := report.Matches(q, summaries, loc)
	rows := report.Aggregate(q.Level, matched, loc)

	if len(rows) == 0 {
		fmt.Println("no matching activities")
		return nil
	}

	fmt.Printf("%-22s %-10s %6s %12s %10s %10s\n", "period", "sport", "count", "distance", "calories", "format")
	for _, r := range rows {
		fmt.Printf("%-22s %-10s %6d %12s %10d %10s\n",
			r.Period, r.Sport, r.Count, report.FormatDistance(r.TotalDistance), r.TotalCalories, r.Format)
	}
	return nil
}
