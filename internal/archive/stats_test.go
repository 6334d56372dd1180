package archive

import (
	"testing"
	"time"
)

func TestDailyStatisticsFromSamples(t *testing.T) {
	loc := time.UTC
	day := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)

	samples := []Sample{
		{Timestamp: day.Add(8 * time.Hour).Unix(), BPM: 60},
		{Timestamp: day.Add(9 * time.Hour).Unix(), BPM: 80},
		{Timestamp: day.Add(10 * time.Hour).Unix(), BPM: 100},
	}

	stats := DailyStatisticsFromSamples(samples, loc)
	if len(stats) != 1 {
		t.Fatalf("expected 1 day of statistics, got %d", len(stats))
	}

	s := stats[0]
	if !s.Date.Equal(day) {
		t.Errorf("Date = %v, want %v", s.Date, day)
	}
	if s.MinHeartRate != 60 || s.MaxHeartRate != 100 {
		t.Errorf("min/max = %v/%v, want 60/100", s.MinHeartRate, s.MaxHeartRate)
	}
	if s.MeanHeartRate != 80 {
		t.Errorf("mean = %v, want 80", s.MeanHeartRate)
	}
	if s.MedianHeartRate != 80 {
		t.Errorf("median = %v, want 80", s.MedianHeartRate)
	}
	if s.NumberOfEntries != 3 {
		t.Errorf("number_of_entries = %d, want 3", s.NumberOfEntries)
	}
}

func TestDailyStatisticsDropsSingleSampleDays(t *testing.T) {
	samples := []Sample{
		{Timestamp: time.Date(2020, 6, 15, 8, 0, 0, 0, time.UTC).Unix(), BPM: 60},
	}
	stats := DailyStatisticsFromSamples(samples, time.UTC)
	if len(stats) != 0 {
		t.Fatalf("expected a single-sample day to be dropped, got %+v", stats)
	}
}
