package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheBlobMapGroupsByMonth(t *testing.T) {
	cacheDir := t.TempDir()
	archiveDir := t.TempDir()

	for _, name := range []string{
		"2020-06-01.json",
		"2020-06-02.json",
		"2020-07-01.json",
		"notes.txt", // no leading date, ignored
	} {
		if err := os.WriteFile(filepath.Join(cacheDir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := CacheBlobMap(cacheDir, archiveDir, true, time.Now())
	if err != nil {
		t.Fatalf("CacheBlobMap: %v", err)
	}
	if len(got["2020-06"]) != 2 || len(got["2020-07"]) != 1 {
		t.Fatalf("unexpected grouping: %+v", got)
	}
}

func TestCacheBlobMapIncrementalSkipsOldMonthsWithExistingBuckets(t *testing.T) {
	cacheDir := t.TempDir()
	archiveDir := t.TempDir()
	today := time.Date(2020, 9, 1, 0, 0, 0, 0, time.UTC)

	// Old blob whose bucket already exists: skipped without --all.
	if err := os.WriteFile(filepath.Join(cacheDir, "2020-01-15.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(BucketPath(archiveDir, "2020-01"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Old blob with no bucket yet: still picked up.
	if err := os.WriteFile(filepath.Join(cacheDir, "2020-02-15.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Recent blob: always picked up.
	if err := os.WriteFile(filepath.Join(cacheDir, "2020-08-20.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	incremental, err := CacheBlobMap(cacheDir, archiveDir, false, today)
	if err != nil {
		t.Fatalf("CacheBlobMap incremental: %v", err)
	}
	if _, ok := incremental["2020-01"]; ok {
		t.Error("expected old month with existing bucket to be skipped")
	}
	if _, ok := incremental["2020-02"]; !ok {
		t.Error("expected old month without a bucket to be revisited")
	}
	if _, ok := incremental["2020-08"]; !ok {
		t.Error("expected recent month to be picked up")
	}

	full, err := CacheBlobMap(cacheDir, archiveDir, true, today)
	if err != nil {
		t.Fatalf("CacheBlobMap all: %v", err)
	}
	if len(full) != 3 {
		t.Errorf("expected all 3 months with --all, got %d", len(full))
	}
}

func TestReadBlobSamplesDropsNonPositive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2020-06-01.json")
	blob := `[
		{"datetime": "2020-06-01T08:00:00Z", "value": 62},
		{"datetime": "2020-06-01T08:00:01Z", "value": 0},
		{"datetime": "2020-06-01T08:00:02Z", "value": 64}
	]`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := ReadBlobSamples(path)
	if err != nil {
		t.Fatalf("ReadBlobSamples: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples after dropping bpm<=0, got %d", len(samples))
	}
	if samples[0].BPM != 62 || samples[1].BPM != 64 {
		t.Errorf("unexpected samples: %+v", samples)
	}
}

func TestReadBlobSamplesMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2020-06-01.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadBlobSamples(path); err == nil {
		t.Fatal("expected error for malformed blob")
	}
}
