package report

import (
	"testing"
	"time"

	"github.com/ddboline/garmin-go/internal/sporttype"
	"github.com/ddboline/garmin-go/internal/store"
)

func TestCompileBikingWeekTokens(t *testing.T) {
	q := Compile([]string{"biking", "2020-11", "week"}, nil)

	if !q.HasSport || q.Sport != sporttype.Biking {
		t.Errorf("expected sport filter biking, got %+v", q.Sport)
	}
	if q.Level != LevelWeek {
		t.Errorf("expected LevelWeek, got %v", q.Level)
	}
	if len(q.Constraints) != 1 || q.Constraints[0].kind != kindYearMonth {
		t.Fatalf("expected one year-month constraint, got %+v", q.Constraints)
	}
	if q.Constraints[0].year != 2020 || q.Constraints[0].month != 11 {
		t.Errorf("expected 2020-11, got %d-%d", q.Constraints[0].year, q.Constraints[0].month)
	}
}

func TestMatchesSubstringFallback(t *testing.T) {
	q := Compile([]string{"morning"}, nil)
	summaries := []store.ActivitySummary{
		{Filename: "2020-01-01-morning-run.tcx", BeginDateTime: time.Now()},
		{Filename: "2020-01-01-evening-bike.fit", BeginDateTime: time.Now()},
	}
	got := Matches(q, summaries, time.UTC)
	if len(got) != 1 || got[0].Filename != "2020-01-01-morning-run.tcx" {
		t.Fatalf("expected one substring match, got %+v", got)
	}
}

func TestMatchesLatest(t *testing.T) {
	q := Compile([]string{"latest"}, nil)
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []store.ActivitySummary{
		{Filename: "old.tcx", BeginDateTime: older},
		{Filename: "new.tcx", BeginDateTime: newer},
	}
	got := Matches(q, summaries, time.UTC)
	if len(got) != 1 || got[0].Filename != "new.tcx" {
		t.Fatalf("expected only the latest activity, got %+v", got)
	}
}

func TestMatchesISOWeek(t *testing.T) {
	q := Compile([]string{"2020w10"}, nil)
	inWeek := time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC) // ISO week 10 of 2020
	outOfWeek := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	summaries := []store.ActivitySummary{
		{Filename: "a.tcx", BeginDateTime: inWeek},
		{Filename: "b.tcx", BeginDateTime: outOfWeek},
	}
	got := Matches(q, summaries, time.UTC)
	if len(got) != 1 || got[0].Filename != "a.tcx" {
		t.Fatalf("expected only the in-week activity, got %+v", got)
	}
}
