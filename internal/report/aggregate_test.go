package report

import (
	"testing"
	"time"

	"github.com/ddboline/garmin-go/internal/store"
)

func TestAggregateFileLevelOnePerActivity(t *testing.T) {
	summaries := []store.ActivitySummary{
		{Filename: "a.tcx", Sport: "running", TotalDistance: 5000, TotalDuration: 1800, BeginDateTime: time.Unix(100, 0)},
		{Filename: "b.tcx", Sport: "biking", TotalDistance: 20000, TotalDuration: 3600, BeginDateTime: time.Unix(200, 0)},
	}
	rows := Aggregate(LevelFile, summaries, time.UTC)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestAggregateMonthGroupsBySport(t *testing.T) {
	jan1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC)
	summaries := []store.ActivitySummary{
		{Filename: "a.tcx", Sport: "running", TotalDistance: 5000, TotalDuration: 1800, BeginDateTime: jan1},
		{Filename: "b.tcx", Sport: "running", TotalDistance: 5000, TotalDuration: 1800, BeginDateTime: jan2},
	}
	rows := Aggregate(LevelMonth, summaries, time.UTC)
	if len(rows) != 1 {
		t.Fatalf("expected 1 grouped row, got %d", len(rows))
	}
	if rows[0].Count != 2 || rows[0].TotalDistance != 10000 {
		t.Errorf("unexpected group totals: %+v", rows[0])
	}
	if rows[0].Period != "2021-01" {
		t.Errorf("expected period 2021-01, got %s", rows[0].Period)
	}
}
