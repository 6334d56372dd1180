package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// incrementalCutoffDays is how far back an incremental archive update
// reaches: blobs older than this are skipped when their month's parquet
// already exists.
const incrementalCutoffDays = 60

// blobEntry is one sample in a per-day source blob: a JSON array of these
// makes up each file in the fitbit cache directory.
type blobEntry struct {
	DateTime time.Time `json:"datetime"`
	Value    int32     `json:"value"`
}

// CacheBlobMap scans cacheDir for per-day source blobs (file names
// beginning with the day's YYYY-MM-DD) and groups their paths by month key.
// When all is false, a blob is skipped if its date is more than
// incrementalCutoffDays before today AND its month's parquet file already
// exists, so routine runs only touch recent months while a full rebuild
// revisits everything.
func CacheBlobMap(cacheDir, archiveDir string, all bool, today time.Time) (map[string][]string, error) {
	entries, err := os.ReadDir(cacheDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache directory %s: %w", cacheDir, err)
	}

	var minDate string
	if !all {
		minDate = today.UTC().AddDate(0, 0, -incrementalCutoffDays).Format("2006-01-02")
	}

	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) < 10 {
			continue
		}
		date := name[:10]
		if _, err := time.Parse("2006-01-02", date); err != nil {
			continue
		}
		month := date[:7]

		if minDate != "" && date < minDate {
			if _, err := os.Stat(BucketPath(archiveDir, month)); err == nil {
				continue
			}
		}

		out[month] = append(out[month], filepath.Join(cacheDir, name))
	}

	for _, paths := range out {
		sort.Strings(paths)
	}
	return out, nil
}

// ReadBlobSamples decodes one per-day source blob: a JSON array of
// (datetime, value) entries. Samples with value <= 0 are dropped here so
// callers can feed the result straight into WriteBucket.
func ReadBlobSamples(path string) ([]Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", path, err)
	}

	var entries []blobEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding blob %s: %w", path, err)
	}

	out := make([]Sample, 0, len(entries))
	for _, e := range entries {
		if e.Value <= 0 {
			continue
		}
		out = append(out, Sample{Timestamp: e.DateTime.UTC().Unix(), BPM: e.Value})
	}
	return out, nil
}
