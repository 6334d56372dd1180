package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/sporttype"
)

// Dialect distinguishes the two XML container shapes the XML parser
// accepts: the Garmin Training Center trackpoint-exchange format (.tcx,
// optionally gzipped) and the device-dumped variant (.gmn).
type Dialect int

const (
	DialectTCX Dialect = iota
	DialectGMN
)

// ParseXML decodes a TCX/GMN XML activity file into laps and points. When
// isGzip is set, data is transparently gunzipped first using
// klauspost/compress/gzip rather than stdlib compress/gzip.
func ParseXML(data []byte, dialect Dialect, isGzip bool) ([]model.Lap, []model.Point, sporttype.SportType, error) {
	if isGzip {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, nil, sporttype.None, fmt.Errorf("opening gzip stream: %w: %w", model.ErrMalformedStructure, err)
		}
		defer zr.Close()
		decompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, nil, sporttype.None, fmt.Errorf("decompressing: %w: %w", model.ErrMalformedStructure, err)
		}
		data = decompressed
	}

	switch dialect {
	case DialectGMN:
		return parseGMN(data)
	default:
		return parseTCX(data)
	}
}

type tcxHeartRate struct {
	Value *int `xml:"Value"`
}

type tcxTrackpoint struct {
	Time            string        `xml:"Time"`
	Position        *tcxPosition  `xml:"Position"`
	AltitudeMeters  *float64      `xml:"AltitudeMeters"`
	DistanceMeters  *float64      `xml:"DistanceMeters"`
	HeartRateBpm    *tcxHeartRate `xml:"HeartRateBpm"`
	Extensions      *tcxExtensions `xml:"Extensions"`
}

type tcxPosition struct {
	LatitudeDegrees  *float64 `xml:"LatitudeDegrees"`
	LongitudeDegrees *float64 `xml:"LongitudeDegrees"`
}

type tcxExtensions struct {
	Speed *float64      `xml:"Speed"`
	TPX   *tcxExtSpeed  `xml:"TPX"`
}

type tcxExtSpeed struct {
	Speed *float64 `xml:"Speed"`
}

type tcxLap struct {
	StartTime           string        `xml:"StartTime,attr"`
	TotalTimeSeconds     float64      `xml:"TotalTimeSeconds"`
	DistanceMeters       float64      `xml:"DistanceMeters"`
	Calories             int          `xml:"Calories"`
	Intensity            string       `xml:"Intensity"`
	TriggerMethod        string       `xml:"TriggerMethod"`
	MaximumSpeed         *float64     `xml:"MaximumSpeed"`
	AverageHeartRateBpm  *tcxHeartRate `xml:"AverageHeartRateBpm"`
	MaximumHeartRateBpm  *tcxHeartRate `xml:"MaximumHeartRateBpm"`
	Track                struct {
		Trackpoint []tcxTrackpoint `xml:"Trackpoint"`
	} `xml:"Track"`
}

type tcxDocument struct {
	XMLName    xml.Name `xml:"TrainingCenterDatabase"`
	Activities struct {
		Activity struct {
			Sport string   `xml:"Sport,attr"`
			Lap   []tcxLap `xml:"Lap"`
		} `xml:"Activity"`
	} `xml:"Activities"`
}

func parseTCX(data []byte) ([]model.Lap, []model.Point, sporttype.SportType, error) {
	var doc tcxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, sporttype.None, fmt.Errorf("unmarshaling tcx: %w: %w", model.ErrMalformedStructure, err)
	}

	sport := sporttype.None
	if s, ok := sporttype.Parse(doc.Activities.Activity.Sport); ok {
		sport = s
	}

	var laps []model.Lap
	var points []model.Point

	for i, tl := range doc.Activities.Activity.Lap {
		start, err := time.Parse(time.RFC3339, tl.StartTime)
		if err != nil {
			return nil, nil, sporttype.None, fmt.Errorf("parsing lap start time %q: %w: %w", tl.StartTime, model.ErrMalformedTime, err)
		}

		l := model.Lap{
			LapIndex:     i,
			LapNumber:    i,
			LapStart:     start.UTC(),
			LapDuration:  tl.TotalTimeSeconds,
			LapDistance:  tl.DistanceMeters,
			LapCalories:  tl.Calories,
			LapIntensity: tl.Intensity,
			LapTrigger:   tl.TriggerMethod,
			LapMaxSpeed:  tl.MaximumSpeed,
		}
		if tl.AverageHeartRateBpm != nil && tl.AverageHeartRateBpm.Value != nil {
			hr := float64(*tl.AverageHeartRateBpm.Value)
			l.LapAvgHR = &hr
		}
		if tl.MaximumHeartRateBpm != nil && tl.MaximumHeartRateBpm.Value != nil {
			hr := float64(*tl.MaximumHeartRateBpm.Value)
			l.LapMaxHR = &hr
		}
		laps = append(laps, l)

		for _, tp := range tl.Track.Trackpoint {
			p, ok, err := buildTCXPoint(tp)
			if err != nil {
				return nil, nil, sporttype.None, err
			}
			if ok {
				points = append(points, p)
			}
		}
	}

	if len(laps) == 0 {
		return nil, nil, sporttype.None, model.ErrEmptyLap
	}

	laps = model.RenumberLaps(laps)
	points = model.DerivePointDurations(points)
	return laps, points, sport, nil
}

func buildTCXPoint(tp tcxTrackpoint) (model.Point, bool, error) {
	var p model.Point

	if tp.Position == nil || tp.Position.LatitudeDegrees == nil || tp.Position.LongitudeDegrees == nil {
		return p, false, nil
	}
	if tp.DistanceMeters == nil || *tp.DistanceMeters <= 0 {
		return p, false, nil
	}

	ts, err := time.Parse(time.RFC3339, tp.Time)
	if err != nil {
		return p, false, fmt.Errorf("parsing trackpoint time %q: %w: %w", tp.Time, model.ErrMalformedTime, err)
	}

	p.Time = ts.UTC()
	p.Latitude = tp.Position.LatitudeDegrees
	p.Longitude = tp.Position.LongitudeDegrees
	p.Distance = tp.DistanceMeters
	p.Altitude = tp.AltitudeMeters
	if tp.HeartRateBpm != nil && tp.HeartRateBpm.Value != nil {
		p.HeartRate = tp.HeartRateBpm.Value
	}
	if tp.Extensions != nil {
		if tp.Extensions.Speed != nil {
			p.SpeedMPS = *tp.Extensions.Speed
		} else if tp.Extensions.TPX != nil && tp.Extensions.TPX.Speed != nil {
			p.SpeedMPS = *tp.Extensions.TPX.Speed
		}
		model.DeriveSpeeds(&p)
	}

	return p, true, nil
}

// gmn is the device-dumped lowercase-tag dialect; it mirrors tcx's shape
// one-for-one but without the Garmin Training Center nesting.
type gmnPoint struct {
	Time     string   `xml:"time"`
	Lat      *float64 `xml:"lat"`
	Lon      *float64 `xml:"lon"`
	Alt      *float64 `xml:"alt"`
	Distance *float64 `xml:"distance"`
	HR       *int     `xml:"hr"`
	Speed    *float64 `xml:"extensions>speed"`
}

type gmnLap struct {
	StartTime string     `xml:"start_time,attr"`
	Duration  float64    `xml:"duration"`
	Distance  float64    `xml:"distance"`
	Calories  int        `xml:"calories"`
	Trigger   string     `xml:"trigger"`
	MaxSpeed  *float64   `xml:"max_speed"`
	Intensity string     `xml:"intensity"`
	AvgHR     *float64   `xml:"avg_hr"`
	MaxHR     *float64   `xml:"max_hr"`
	Point     []gmnPoint `xml:"point"`
}

type gmnDocument struct {
	XMLName xml.Name `xml:"run"`
	Sport   string   `xml:"sport,attr"`
	Lap     []gmnLap `xml:"lap"`
}

func parseGMN(data []byte) ([]model.Lap, []model.Point, sporttype.SportType, error) {
	var doc gmnDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, sporttype.None, fmt.Errorf("unmarshaling gmn: %w: %w", model.ErrMalformedStructure, err)
	}

	sport := sporttype.None
	if s, ok := sporttype.Parse(doc.Sport); ok {
		sport = s
	}

	var laps []model.Lap
	var points []model.Point

	for i, gl := range doc.Lap {
		start, err := time.Parse(time.RFC3339, gl.StartTime)
		if err != nil {
			return nil, nil, sporttype.None, fmt.Errorf("parsing lap start time %q: %w: %w", gl.StartTime, model.ErrMalformedTime, err)
		}

		l := model.Lap{
			LapIndex:     i,
			LapNumber:    i,
			LapStart:     start.UTC(),
			LapDuration:  gl.Duration,
			LapDistance:  gl.Distance,
			LapCalories:  gl.Calories,
			LapTrigger:   gl.Trigger,
			LapIntensity: gl.Intensity,
			LapMaxSpeed:  gl.MaxSpeed,
			LapAvgHR:     gl.AvgHR,
			LapMaxHR:     gl.MaxHR,
		}
		laps = append(laps, l)

		for _, gp := range gl.Point {
			p, ok, err := buildGMNPoint(gp)
			if err != nil {
				return nil, nil, sporttype.None, err
			}
			if ok {
				points = append(points, p)
			}
		}
	}

	if len(laps) == 0 {
		return nil, nil, sporttype.None, model.ErrEmptyLap
	}

	laps = model.RenumberLaps(laps)
	points = model.DerivePointDurations(points)
	return laps, points, sport, nil
}

func buildGMNPoint(gp gmnPoint) (model.Point, bool, error) {
	var p model.Point
	if gp.Lat == nil || gp.Lon == nil || gp.Distance == nil || *gp.Distance <= 0 {
		return p, false, nil
	}

	ts, err := time.Parse(time.RFC3339, gp.Time)
	if err != nil {
		return p, false, fmt.Errorf("parsing point time %q: %w: %w", gp.Time, model.ErrMalformedTime, err)
	}

	p.Time = ts.UTC()
	p.Latitude = gp.Lat
	p.Longitude = gp.Lon
	p.Altitude = gp.Alt
	p.Distance = gp.Distance
	p.HeartRate = gp.HR
	if gp.Speed != nil {
		p.SpeedMPS = *gp.Speed
		model.DeriveSpeeds(&p)
	}

	return p, true, nil
}
