package archive

import (
	"fmt"
	"log"
	"sort"
	"time"
)

// WriteBucket merges newSamples into a month bucket: collapse newSamples,
// merge with whatever is already on disk for month keeping the FIRST
// occurrence of each timestamp (existing data wins over freshly re-imported
// samples), and rewrite atomically only if that changes the row count.
// Returns the number of rows added.
func WriteBucket(archiveDir, month string, newSamples []Sample) (int, error) {
	start, end, err := MonthBounds(month)
	if err != nil {
		return 0, err
	}

	// Drop anything whose timestamp falls outside the month's own UTC
	// boundary; samples straddling a month boundary are dropped rather
	// than carried into an adjacent bucket.
	inRange := make([]Sample, 0, len(newSamples))
	for _, s := range newSamples {
		t := time.Unix(s.Timestamp, 0).UTC()
		if !t.Before(start) && t.Before(end) {
			inRange = append(inRange, s)
		}
	}

	collapsed := CollapseSamples(inRange)

	path := BucketPath(archiveDir, month)
	existing, err := readBucket(path)
	if err != nil {
		return 0, err
	}

	merged := mergeKeepFirst(existing, collapsed)

	diff := len(merged) - len(existing)
	if diff == 0 {
		log.Printf("No new entries for %s", month)
		return 0, nil
	}

	if err := writeBucketAtomic(path, merged); err != nil {
		return 0, fmt.Errorf("writing bucket %s: %w", month, err)
	}
	return diff, nil
}

// mergeKeepFirst concatenates existing then additional, deduplicates on
// timestamp keeping the first occurrence seen (i.e. existing wins), and
// returns the result sorted ascending by timestamp.
func mergeKeepFirst(existing, additional []Sample) []Sample {
	seen := make(map[int64]bool, len(existing)+len(additional))
	out := make([]Sample, 0, len(existing)+len(additional))

	for _, s := range existing {
		if !seen[s.Timestamp] {
			seen[s.Timestamp] = true
			out = append(out, s)
		}
	}
	for _, s := range additional {
		if !seen[s.Timestamp] {
			seen[s.Timestamp] = true
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
