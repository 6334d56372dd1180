package archive

import (
	"os"
	"testing"
	"time"
)

// TestWriteBucketScenario covers two samples at the same
// timestamp T with bpm 60 and 80 collapse to one row (T, 70). Re-importing a
// third sample of 60 at T afterwards leaves the archive unchanged, since the
// existing row at T already wins the dedup.
func TestWriteBucketScenario(t *testing.T) {
	dir := t.TempDir()
	month := "2020-06"
	tsBase, _, err := MonthBounds(month)
	if err != nil {
		t.Fatalf("MonthBounds: %v", err)
	}
	ts := tsBase.Add(time.Hour).Unix()

	n, err := WriteBucket(dir, month, []Sample{
		{Timestamp: ts, BPM: 60},
		{Timestamp: ts, BPM: 80},
	})
	if err != nil {
		t.Fatalf("WriteBucket: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 new row, got %d", n)
	}

	rows, err := readBucket(BucketPath(dir, month))
	if err != nil {
		t.Fatalf("readBucket: %v", err)
	}
	if len(rows) != 1 || rows[0].BPM != 70 {
		t.Fatalf("expected single row bpm=70, got %+v", rows)
	}

	n2, err := WriteBucket(dir, month, []Sample{{Timestamp: ts, BPM: 60}})
	if err != nil {
		t.Fatalf("WriteBucket second call: %v", err)
	}
	if n2 != 0 {
		t.Fatalf("expected 0 new rows on re-import, got %d", n2)
	}

	rows, err = readBucket(BucketPath(dir, month))
	if err != nil {
		t.Fatalf("readBucket after re-import: %v", err)
	}
	if len(rows) != 1 || rows[0].BPM != 70 {
		t.Fatalf("archive should be unchanged, got %+v", rows)
	}
}

func TestWriteBucketDropsOutOfRangeSamples(t *testing.T) {
	dir := t.TempDir()
	month := "2020-06"
	start, end, _ := MonthBounds(month)

	n, err := WriteBucket(dir, month, []Sample{
		{Timestamp: start.Add(-time.Second).Unix(), BPM: 70},
		{Timestamp: end.Unix(), BPM: 70},
		{Timestamp: start.Unix(), BPM: 70},
	})
	if err != nil {
		t.Fatalf("WriteBucket: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the in-range sample to be kept, got %d new rows", n)
	}
}

func TestReadRangeAndStepSize(t *testing.T) {
	dir := t.TempDir()
	month := "2020-06"
	start, _, _ := MonthBounds(month)

	if _, err := WriteBucket(dir, month, []Sample{
		{Timestamp: start.Unix(), BPM: 60},
		{Timestamp: start.Add(30 * time.Second).Unix(), BPM: 80},
		{Timestamp: start.Add(90 * time.Second).Unix(), BPM: 100},
	}); err != nil {
		t.Fatalf("WriteBucket: %v", err)
	}

	samples, err := ReadRange(dir, start, start.AddDate(0, 0, 1), 0)
	if err != nil {
		t.Fatalf("ReadRange: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples with no step size, got %d", len(samples))
	}

	stepped, err := ReadRange(dir, start, start.AddDate(0, 0, 1), 60)
	if err != nil {
		t.Fatalf("ReadRange with step: %v", err)
	}
	// The first two samples (t+0, t+30) floor into the same 60s bucket and
	// average to 70; the third (t+90) falls in the next bucket.
	if len(stepped) != 2 {
		t.Fatalf("expected 2 buckets after 60s step, got %d: %+v", len(stepped), stepped)
	}
	if stepped[0].BPM != 70 {
		t.Errorf("first bucket bpm = %d, want 70", stepped[0].BPM)
	}
	if stepped[1].BPM != 100 {
		t.Errorf("second bucket bpm = %d, want 100", stepped[1].BPM)
	}
}

func TestCountOnlyShortCircuitsWhenFileWithinRange(t *testing.T) {
	dir := t.TempDir()
	month := "2020-06"
	start, _, _ := MonthBounds(month)

	if _, err := WriteBucket(dir, month, []Sample{
		{Timestamp: start.Add(time.Hour).Unix(), BPM: 60},
		{Timestamp: start.Add(25 * time.Hour).Unix(), BPM: 70},
	}); err != nil {
		t.Fatalf("WriteBucket: %v", err)
	}

	count, err := CountOnly(dir, start, start.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("CountOnly: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountOnly = %d, want 2", count)
	}

	// The range is widened to whole UTC days, so a narrow query has to
	// select a different day to cut the file: only the second day's sample
	// falls in it.
	narrow, err := CountOnly(dir, start.AddDate(0, 0, 1), start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("CountOnly narrow: %v", err)
	}
	if narrow != 1 {
		t.Fatalf("CountOnly narrow = %d, want 1", narrow)
	}
}

func TestReadRangeMissingBucketReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	samples, err := ReadRange(dir, start, start.AddDate(0, 0, 5), 0)
	if err != nil {
		t.Fatalf("ReadRange on empty archive: %v", err)
	}
	if len(samples) != 0 {
		t.Fatalf("expected no samples, got %d", len(samples))
	}
}

func TestMain_NoLeftoverTempFiles(t *testing.T) {
	dir := t.TempDir()
	month := "2020-06"
	start, _, _ := MonthBounds(month)
	if _, err := WriteBucket(dir, month, []Sample{{Timestamp: start.Add(time.Hour).Unix(), BPM: 60}}); err != nil {
		t.Fatalf("WriteBucket: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if len(e.Name()) > 5 && e.Name()[:5] == ".tmp_" {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}
