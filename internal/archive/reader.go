package archive

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// DatedSample is a (datetime_utc, bpm) pair returned by a range query.
type DatedSample struct {
	Time time.Time
	BPM  int32
}

// monthsInRange enumerates the "YYYY-MM" buckets a [start, end] date range
// covers, inclusive.
func monthsInRange(start, end time.Time) []string {
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	var months []string
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, m.Format("2006-01"))
	}
	return months
}

// ReadRange enumerates the months [startDate, endDate]
// covers, reads each existing bucket, optionally floors timestamps to a
// step_size bucket, filters to the UTC range, and averages rows sharing a
// (possibly bucketed) timestamp.
func ReadRange(archiveDir string, startDate, endDate time.Time, stepSize int) ([]DatedSample, error) {
	rangeStart := startOfDayUTC(startDate)
	rangeEnd := endOfDayUTC(endDate)

	byTS := make(map[int64][]int32)

	for _, month := range monthsInRange(startDate, endDate) {
		path := BucketPath(archiveDir, month)
		samples, err := readBucket(path)
		if err != nil {
			return nil, fmt.Errorf("reading bucket %s: %w", month, err)
		}
		for _, s := range samples {
			t := time.Unix(s.Timestamp, 0).UTC()
			if t.Before(rangeStart) || t.After(rangeEnd) {
				continue
			}
			ts := s.Timestamp
			if stepSize > 1 {
				ts = (ts / int64(stepSize)) * int64(stepSize)
			}
			byTS[ts] = append(byTS[ts], s.BPM)
		}
	}

	out := make([]DatedSample, 0, len(byTS))
	for ts, bpms := range byTS {
		var sum int64
		for _, b := range bpms {
			sum += int64(b)
		}
		avg := int32((sum + int64(len(bpms))/2) / int64(len(bpms)))
		out = append(out, DatedSample{Time: time.Unix(ts, 0).UTC(), BPM: avg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	return out, nil
}

// CountOnly is the count-only entry point: same filtering as
// ReadRange, but short-circuits to a file's row count using its stored
// min/max timestamps whenever the whole file already lies inside the
// requested range, avoiding a full row-by-row decode.
func CountOnly(archiveDir string, startDate, endDate time.Time) (int, error) {
	rangeStart := startOfDayUTC(startDate)
	rangeEnd := endOfDayUTC(endDate)

	total := 0
	for _, month := range monthsInRange(startDate, endDate) {
		path := BucketPath(archiveDir, month)
		n, minTS, maxTS, err := fileRowCountAndBounds(path)
		if err != nil {
			return 0, fmt.Errorf("counting bucket %s: %w", month, err)
		}
		if n == 0 {
			continue
		}

		minT := time.Unix(minTS, 0).UTC()
		maxT := time.Unix(maxTS, 0).UTC()
		if !minT.Before(rangeStart) && !maxT.After(rangeEnd) {
			// Whole file is within range: no need to decode every row.
			total += n
			continue
		}

		samples, err := readBucket(path)
		if err != nil {
			return 0, err
		}
		for _, s := range samples {
			t := time.Unix(s.Timestamp, 0).UTC()
			if !t.Before(rangeStart) && !t.After(rangeEnd) {
				total++
			}
		}
	}
	return total, nil
}

// fileRowCountAndBounds returns a bucket file's row count and its first and
// last row timestamps (rows are stored strictly increasing, so these are
// the file's min and max) without decoding the interior rows.
func fileRowCountAndBounds(path string) (count int, minTS, maxTS int64, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return 0, 0, 0, nil
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(row), 4)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("opening parquet reader for %s: %w", path, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	if n == 0 {
		return 0, 0, 0, nil
	}

	rows := make([]row, n)
	if err := pr.Read(&rows); err != nil {
		return 0, 0, 0, fmt.Errorf("reading rows from %s: %w", path, err)
	}

	return n, rows[0].Timestamp, rows[n-1].Timestamp, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
