package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ddboline/garmin-go/internal/model"
)

// LoadCorrectionFile reads the correction JSON file: an
// object keyed by RFC3339 start time, whose values are objects keyed by lap
// number (decimal string), whose leaves are either a scalar (distance in
// miles) or a two-element array [distance_mi, duration_s]. Loaded once per
// ingest pass and returned as an immutable CorrectionMap.
func LoadCorrectionFile(path string) (model.CorrectionMap, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.CorrectionMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading correction file %s: %w", path, err)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling correction file %s: %w", path, err)
	}

	var corrections []model.Correction
	for startStr, laps := range raw {
		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return nil, fmt.Errorf("parsing correction start time %q: %w: %w", startStr, model.ErrMalformedTime, err)
		}

		for lapStr, leaf := range laps {
			lapNum, err := strconv.Atoi(lapStr)
			if err != nil {
				return nil, fmt.Errorf("parsing correction lap number %q: %w: %w", lapStr, model.ErrMalformedNumber, err)
			}

			corr := model.Correction{StartTime: start.UTC(), LapNumber: lapNum}

			var scalar float64
			if err := json.Unmarshal(leaf, &scalar); err == nil {
				corr.Distance = &scalar
				corrections = append(corrections, corr)
				continue
			}

			var pair [2]float64
			if err := json.Unmarshal(leaf, &pair); err == nil {
				dist, dur := pair[0], pair[1]
				corr.Distance = &dist
				corr.Duration = &dur
				corrections = append(corrections, corr)
				continue
			}

			return nil, fmt.Errorf("correction leaf for %s/%s is neither a scalar nor a pair: %w", startStr, lapStr, model.ErrMalformedStructure)
		}
	}

	return model.NewCorrectionMap(corrections), nil
}
