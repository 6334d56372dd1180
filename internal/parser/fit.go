package parser

import (
	"bytes"
	"fmt"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"

	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/sporttype"
)

// semicircleConst converts FIT semicircle units to decimal degrees:
// degrees = raw * 180 / 2^31.
const semicircleConst = 11930464.7111 // 2^31 / 180

// ParseFit decodes a device-native FIT binary file into laps and points.
// Record messages become Point candidates (kept only when
// latitude, longitude and a positive distance are all present); Lap
// messages append to the lap list and may set the file-level sport (last
// lap wins on conflict); a Session message's sport, if present, overrides
// any lap-level sport, since it reflects the device's own final summary.
func ParseFit(data []byte) ([]model.Lap, []model.Point, sporttype.SportType, error) {
	if len(data) == 0 {
		return nil, nil, sporttype.None, model.ErrMalformedStructure
	}

	dec := decoder.New(bytes.NewReader(data))

	var laps []model.Lap
	var points []model.Point
	sport := sporttype.None

	for dec.Next() {
		fitData, err := dec.Decode()
		if err != nil {
			return nil, nil, sporttype.None, fmt.Errorf("decoding fit data: %w: %w", model.ErrMalformedStructure, err)
		}

		for i := range fitData.Messages {
			msg := &fitData.Messages[i]
			switch msg.Num {
			case typedef.MesgNumRecord:
				rec := mesgdef.NewRecord(msg)
				if p, ok := buildPoint(rec); ok {
					points = append(points, p)
				}

			case typedef.MesgNumLap:
				lapMsg := mesgdef.NewLap(msg)
				lap := buildLap(lapMsg, len(laps))
				laps = append(laps, lap)
				if lapMsg.Sport != typedef.SportInvalid {
					if s := sportFromFit(lapMsg.Sport); s != sporttype.None {
						sport = s
					}
				}

			case typedef.MesgNumSession:
				sessionMsg := mesgdef.NewSession(msg)
				if sessionMsg.Sport != typedef.SportInvalid {
					if s := sportFromFit(sessionMsg.Sport); s != sporttype.None {
						sport = s
					}
				}
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

func buildPoint(rec *mesgdef.Record) (model.Point, bool) {
	var p model.Point

	if rec.PositionLat == 0x7FFFFFFF || rec.PositionLong == 0x7FFFFFFF {
		return p, false
	}
	lat := float64(rec.PositionLat) / semicircleConst
	lon := float64(rec.PositionLong) / semicircleConst

	var dist float64
	hasDistance := rec.Distance != 0xFFFFFFFF
	if hasDistance {
		dist = float64(rec.Distance) / 100 // cm -> m
	}
	if !hasDistance || dist <= 0 {
		return p, false
	}

	p.Time = rec.Timestamp.UTC()
	p.Latitude = &lat
	p.Longitude = &lon
	p.Distance = &dist

	if rec.Altitude != 0xFFFF {
		alt := float64(rec.Altitude)/5 - 500
		p.Altitude = &alt
	}
	if rec.HeartRate != 0xFF {
		hr := int(rec.HeartRate)
		p.HeartRate = &hr
	}
	if rec.Speed != 0xFFFF {
		p.SpeedMPS = float64(rec.Speed) / 1000
		model.DeriveSpeeds(&p)
	}

	return p, true
}

func buildLap(lapMsg *mesgdef.Lap, index int) model.Lap {
	l := model.Lap{
		LapIndex:    index,
		LapNumber:   index,
		LapStart:    lapMsg.StartTime.UTC(),
		LapDuration: float64(lapMsg.TotalElapsedTime) / 1000,
		LapDistance: float64(lapMsg.TotalDistance) / 100,
	}
	if lapMsg.TotalCalories != 0xFFFF {
		l.LapCalories = int(lapMsg.TotalCalories)
	}
	if lapMsg.AvgHeartRate != 0xFF {
		hr := float64(lapMsg.AvgHeartRate)
		l.LapAvgHR = &hr
	}
	if lapMsg.MaxHeartRate != 0xFF {
		hr := float64(lapMsg.MaxHeartRate)
		l.LapMaxHR = &hr
	}
	if lapMsg.MaxSpeed != 0xFFFF {
		speed := float64(lapMsg.MaxSpeed) / 1000
		l.LapMaxSpeed = &speed
	}
	l.LapTrigger = lapMsg.LapTrigger.String()
	l.LapIntensity = lapMsg.Intensity.String()
	return l
}

func sportFromFit(s typedef.Sport) sporttype.SportType {
	t, ok := sporttype.Parse(s.String())
	if !ok {
		return sporttype.None
	}
	return t
}
