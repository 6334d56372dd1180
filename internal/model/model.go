// Package model defines the canonical activity record and the invariants
// every parser must produce it under.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/ddboline/garmin-go/internal/sporttype"
)

// FileType identifies which parser produced an Activity.
type FileType int

const (
	FileTypeBinary FileType = iota
	FileTypeXML
	FileTypeText
	FileTypeGzippedXML
)

func (f FileType) String() string {
	switch f {
	case FileTypeBinary:
		return "binary"
	case FileTypeXML:
		return "xml"
	case FileTypeText:
		return "text"
	case FileTypeGzippedXML:
		return "gzipped-xml"
	default:
		return "unknown"
	}
}

// Lap is a contiguous segment of an activity with its own aggregate metrics.
type Lap struct {
	LapType     string
	LapIndex    int
	LapStart    time.Time
	LapDuration float64 // seconds
	LapDistance float64 // meters
	LapTrigger  string
	LapMaxSpeed *float64
	LapCalories int
	LapAvgHR    *float64
	LapMaxHR    *float64
	LapIntensity string
	LapNumber   int
}

// Point is a timestamped sample within a lap.
type Point struct {
	Time                time.Time
	Latitude            *float64
	Longitude           *float64
	Altitude            *float64
	Distance            *float64
	HeartRate           *int
	DurationFromLast    float64
	DurationFromBegin   float64
	SpeedMPS            float64
	SpeedPerMi          float64
	SpeedMPH            float64
	AvgSpeedValuePerMi  float64
	AvgSpeedValueMPH    float64
}

// Activity is the canonical, parser-independent record for one recorded
// session of exercise.
type Activity struct {
	ID             uuid.UUID
	Filename       string
	FileType       FileType
	BeginDateTime  time.Time
	Sport          sporttype.SportType
	TotalCalories  int
	TotalDistance  float64
	TotalDuration  float64
	TotalHRDur     float64
	TotalHRDis     float64
	Laps           []Lap
	Points         []Point
}

// NewActivity composes a canonical Activity from a filename, file type, a
// non-empty ordered lap list and a point list, deriving every activity-level
// total from the laps.
// Laps must already be renumbered (LapIndex == position) and points must
// already carry derived durations; see RenumberLaps and DerivePointDurations.
func NewActivity(filename string, ft FileType, laps []Lap, points []Point) (*Activity, error) {
	if len(laps) == 0 {
		return nil, ErrEmptyLap
	}
	if laps[0].LapStart.IsZero() || laps[0].LapStart.Equal(sentinelTime) {
		return nil, ErrEmptyLap
	}

	a := &Activity{
		ID:            uuid.New(),
		Filename:      filename,
		FileType:      ft,
		BeginDateTime: laps[0].LapStart,
		Laps:          laps,
		Points:        points,
	}

	for i, l := range laps {
		if l.LapIndex != i {
			return nil, ErrMalformedStructure
		}
		a.TotalCalories += l.LapCalories
		a.TotalDistance += l.LapDistance
		a.TotalDuration += l.LapDuration
		if l.LapAvgHR != nil {
			a.TotalHRDur += *l.LapAvgHR * l.LapDuration
			a.TotalHRDis += l.LapDuration
		}
	}

	return a, nil
}

// sentinelTime marks "no lap start recorded". time.Time's own zero value
// already matches it once normalized to UTC, but this is kept explicit for
// clarity at call sites that compare against it directly.
var sentinelTime = time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)

// LocalDate returns the calendar date of BeginDateTime in loc, used for
// report binning. Archive binning uses UTC dates directly instead; see
// internal/archive.
func (a *Activity) LocalDate(loc *time.Location) time.Time {
	t := a.BeginDateTime.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// RenumberLaps assigns LapIndex == position and LapNumber = max(existing, position)
// for every lap in order.
func RenumberLaps(laps []Lap) []Lap {
	for i := range laps {
		laps[i].LapIndex = i
		if laps[i].LapNumber < i {
			laps[i].LapNumber = i
		}
	}
	return laps
}

// DerivePointDurations computes DurationFromLast as the gap to the previous
// point (0 for the first) and DurationFromBegin as its prefix sum.
func DerivePointDurations(points []Point) []Point {
	var total float64
	var prev time.Time
	for i := range points {
		if i == 0 {
			points[i].DurationFromLast = 0
		} else {
			points[i].DurationFromLast = points[i].Time.Sub(prev).Seconds()
		}
		total += points[i].DurationFromLast
		points[i].DurationFromBegin = total
		prev = points[i].Time
	}
	return points
}

const metersPerMile = 1609.344

// DeriveSpeeds fills in speed_permi/speed_mph from speed_mps when the
// device omitted them. Only derives when speedMPS > 0.
func DeriveSpeeds(p *Point) {
	if p.SpeedMPS <= 0 {
		return
	}
	mph := p.SpeedMPS * 3600 / metersPerMile
	p.SpeedMPH = mph
	if mph > 0 {
		p.SpeedPerMi = 60 / mph
	}
	p.AvgSpeedValueMPH = mph
	if mph > 0 {
		p.AvgSpeedValuePerMi = 60 / mph
	}
}
