package model

import (
	"time"

	"github.com/ddboline/garmin-go/internal/sporttype"
)

// Correction is a sparse overlay keyed by (start_time, lap_number) that
// repairs known device errors.
type Correction struct {
	StartTime time.Time
	LapNumber int
	Distance  *float64 // miles; see CorrectionMap.Apply
	Duration  *float64 // seconds
	Sport     *sporttype.SportType
}

// CorrectionKey is the lookup key for a CorrectionMap.
type CorrectionKey struct {
	StartTime time.Time
	LapNumber int
}

// CorrectionMap is an immutable, read-once-per-ingest-pass set of
// corrections.
type CorrectionMap map[CorrectionKey]Correction

// NewCorrectionMap builds a CorrectionMap from a flat correction list.
func NewCorrectionMap(corrections []Correction) CorrectionMap {
	m := make(CorrectionMap, len(corrections))
	for _, c := range corrections {
		m[CorrectionKey{StartTime: c.StartTime, LapNumber: c.LapNumber}] = c
	}
	return m
}

// Apply rewrites laps using the correction map. Every lap is looked up by
// (firstLapStart, lap.LapNumber) — the first lap's start time, not each
// lap's own — which is intentional: devices sometimes misnumber laps but
// agree on the activity's start. Distances in a correction are miles and
// are multiplied by 1609.344 before being applied as meters; all other
// distances in the system are already meters.
func (m CorrectionMap) Apply(laps []Lap, sport sporttype.SportType) ([]Lap, sporttype.SportType) {
	if len(laps) == 0 {
		return laps, sport
	}
	firstLapStart := laps[0].LapStart
	out := make([]Lap, len(laps))
	copy(out, laps)

	for i := range out {
		corr, ok := m[CorrectionKey{StartTime: firstLapStart, LapNumber: out[i].LapNumber}]
		if !ok {
			continue
		}
		// The sport overlay only propagates when the correction's sport
		// is explicitly set and not None.
		if corr.Sport != nil && *corr.Sport != sporttype.None {
			sport = *corr.Sport
		}
		if corr.Distance != nil {
			out[i].LapDistance = *corr.Distance * metersPerMile
		}
		if corr.Duration != nil {
			out[i].LapDuration = *corr.Duration
		}
	}

	return out, sport
}
