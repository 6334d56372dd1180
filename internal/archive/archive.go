// Package archive maintains the month-partitioned columnar heart-rate
// archive: a writer that merges new
// samples into existing monthly parquet files with first-occurrence
// dedup, and a reader that range-queries across months with optional
// downsampling.
package archive

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// Sample is a single heart-rate reading: only bpm > 0 samples are
// ever retained.
type Sample struct {
	Timestamp int64 // seconds since epoch, UTC
	BPM       int32
}

// row is the on-disk parquet schema for a month bucket.
type row struct {
	Timestamp int64 `parquet:"name=timestamp, type=INT64"`
	BPM       int32 `parquet:"name=bpm, type=INT32"`
}

// BucketPath returns the path of the archive file for month "YYYY-MM".
func BucketPath(archiveDir, month string) string {
	return filepath.Join(archiveDir, month+".parquet")
}

// MonthBounds returns the first instant of month and the first instant of
// the following month, both UTC, i.e. a half-open [start, end) range. month
// must be "YYYY-MM".
func MonthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parsing month %q: %w", month, err)
	}
	start = start.UTC()
	end := start.AddDate(0, 1, 0)
	return start, end, nil
}

// CollapseSamples groups samples sharing a
// timestamp, averages their bpm (rounded to the nearest integer), and
// returns rows sorted ascending by timestamp.
func CollapseSamples(samples []Sample) []Sample {
	byTS := make(map[int64][]int32, len(samples))
	for _, s := range samples {
		if s.BPM <= 0 {
			continue
		}
		byTS[s.Timestamp] = append(byTS[s.Timestamp], s.BPM)
	}

	out := make([]Sample, 0, len(byTS))
	for ts, bpms := range byTS {
		var sum int64
		for _, b := range bpms {
			sum += int64(b)
		}
		avg := int32((sum + int64(len(bpms))/2) / int64(len(bpms)))
		out = append(out, Sample{Timestamp: ts, BPM: avg})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// readBucket loads every row from an existing bucket file. Returns a nil
// slice, no error, if the file does not exist.
func readBucket(path string) ([]Sample, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening bucket %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(row), 4)
	if err != nil {
		return nil, fmt.Errorf("opening parquet reader for %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	rows := make([]row, n)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("reading rows from %s: %w", path, err)
	}

	out := make([]Sample, n)
	for i, r := range rows {
		out[i] = Sample{Timestamp: r.Timestamp, BPM: r.BPM}
	}
	return out, nil
}

// writeBucketAtomic writes rows to path via a temp file in the same
// directory, then renames into place, matching the sync engine's own
// convention reused here for archive writes.
func writeBucketAtomic(path string, samples []Sample) error {
	tmp := filepath.Join(filepath.Dir(path), ".tmp_"+randomAlnum(8))

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("creating temp file %s: %w", tmp, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(row), 4)
	if err != nil {
		fw.Close()
		os.Remove(tmp)
		return fmt.Errorf("creating parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range samples {
		if err := pw.Write(row{Timestamp: s.Timestamp, BPM: s.BPM}); err != nil {
			pw.WriteStop()
			fw.Close()
			os.Remove(tmp)
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		os.Remove(tmp)
		return fmt.Errorf("finalizing parquet file: %w", err)
	}
	if err := fw.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}

func randomAlnum(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	raw := make([]byte, n)
	rand.Read(raw)
	for i, c := range raw {
		b[i] = alphabet[int(c)%len(alphabet)]
	}
	return string(b)
}
