package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/sporttype"
)

// ParseText decodes a freeform key=value activity log into laps and
// synthesized points. Each non-blank line is one lap.
func ParseText(data []byte, loc *time.Location) ([]model.Lap, []model.Point, sporttype.SportType, error) {
	lines := strings.Split(string(data), "\n")

	var laps []model.Lap
	sport := sporttype.None

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lap, lineSport, err := parseTextLine(line, loc)
		if err != nil {
			return nil, nil, sporttype.None, err
		}
		if lineSport != sporttype.None {
			sport = lineSport
		}
		laps = append(laps, lap)
	}

	if len(laps) == 0 {
		return nil, nil, sporttype.None, model.ErrEmptyLap
	}

	laps = model.RenumberLaps(laps)

	// Points are synthesized from laps only: one per lap, time =
	// lap_start, distance = lap_distance, heart_rate absent.
	points := make([]model.Point, len(laps))
	for i, l := range laps {
		points[i] = model.Point{
			Time:     l.LapStart,
			Distance: floatPtr(l.LapDistance),
		}
		if l.LapDuration > 0 {
			points[i].SpeedMPS = l.LapDistance / l.LapDuration
			model.DeriveSpeeds(&points[i])
		}
	}
	points = model.DerivePointDurations(points)

	return laps, points, sport, nil
}

func floatPtr(f float64) *float64 {
	return &f
}

func parseTextLine(line string, loc *time.Location) (model.Lap, sporttype.SportType, error) {
	var lap model.Lap
	sport := sporttype.None

	var date string
	clock := "12:00:00"
	var avgHR float64

	for _, tok := range strings.Fields(line) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}

		switch key {
		case "date":
			if len(value) != 8 {
				return lap, sport, fmt.Errorf("parsing date %q: %w", value, model.ErrMalformedNumber)
			}
			date = value

		case "time":
			clock = value

		case "type":
			if s, ok := sporttype.Parse(value); ok {
				sport = s
			}

		case "lap":
			n, err := strconv.Atoi(value)
			if err != nil {
				return lap, sport, fmt.Errorf("parsing lap number %q: %w: %w", value, model.ErrMalformedNumber, err)
			}
			lap.LapNumber = n

		case "dur":
			d, err := parseDuration(value)
			if err != nil {
				return lap, sport, err
			}
			lap.LapDuration = d

		case "dis":
			d, err := parseDistance(value)
			if err != nil {
				return lap, sport, err
			}
			lap.LapDistance = d

		case "cal":
			c, err := strconv.Atoi(value)
			if err != nil {
				return lap, sport, fmt.Errorf("parsing calories %q: %w: %w", value, model.ErrMalformedNumber, err)
			}
			lap.LapCalories = c

		case "avghr":
			h, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return lap, sport, fmt.Errorf("parsing avghr %q: %w: %w", value, model.ErrMalformedNumber, err)
			}
			avgHR = h
		}
	}

	if date == "" {
		return lap, sport, fmt.Errorf("line has no date token: %w", model.ErrMalformedStructure)
	}
	layout := "20060102 15:04:05"
	start, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return lap, sport, fmt.Errorf("parsing date+time %q %q: %w: %w", date, clock, model.ErrMalformedTime, err)
	}
	lap.LapStart = start.UTC()
	if avgHR > 0 {
		lap.LapAvgHR = &avgHR
	}

	return lap, sport, nil
}

// parseDuration decodes HH:MM:SS, MM:SS, or bare seconds into seconds.
func parseDuration(s string) (float64, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, fmt.Errorf("parsing duration %q: %w: %w", s, model.ErrMalformedNumber, err)
		}
		return v, nil
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0, fmt.Errorf("parsing duration %q: %w", s, model.ErrMalformedNumber)
		}
		return float64(m*60 + sec), nil
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, fmt.Errorf("parsing duration %q: %w", s, model.ErrMalformedNumber)
		}
		return float64(h*3600 + m*60 + sec), nil
	default:
		return 0, fmt.Errorf("parsing duration %q: %w", s, model.ErrMalformedStructure)
	}
}

// parseDistance decodes "NNmi" (miles), "NNm" (meters) or a bare number
// (meters).
func parseDistance(s string) (float64, error) {
	switch {
	case strings.HasSuffix(s, "mi"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "mi"), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing distance %q: %w: %w", s, model.ErrMalformedNumber, err)
		}
		return v * metersPerMile, nil
	case strings.HasSuffix(s, "m"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(s, "m"), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing distance %q: %w: %w", s, model.ErrMalformedNumber, err)
		}
		return v, nil
	default:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing distance %q: %w: %w", s, model.ErrMalformedNumber, err)
		}
		return v, nil
	}
}

const metersPerMile = 1609.344
