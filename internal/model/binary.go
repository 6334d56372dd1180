package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ddboline/garmin-go/internal/sporttype"
)

// MarshalBinary encodes a compact, fixed-field-order binary snapshot of the
// activity; WriteSnapshot stores these bytes in cache_dir as
// "<source-filename>.avro". The format is not
// actually Avro; it is a hand-rolled row-oriented binary encoding that
// preserves every numeric field bit-for-bit so an activity round-trips
// exactly. The on-disk file extension is kept as ".avro" for compatibility
// with the existing cache layout even though the encoding itself is
// internal.
func (a *Activity) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	idBytes, err := a.ID.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf.Write(idBytes)

	writeString(&buf, a.Filename)
	binary.Write(&buf, binary.BigEndian, int32(a.FileType))
	binary.Write(&buf, binary.BigEndian, a.BeginDateTime.UTC().UnixNano())
	binary.Write(&buf, binary.BigEndian, int32(a.Sport))
	binary.Write(&buf, binary.BigEndian, int64(a.TotalCalories))
	binary.Write(&buf, binary.BigEndian, a.TotalDistance)
	binary.Write(&buf, binary.BigEndian, a.TotalDuration)
	binary.Write(&buf, binary.BigEndian, a.TotalHRDur)
	binary.Write(&buf, binary.BigEndian, a.TotalHRDis)

	binary.Write(&buf, binary.BigEndian, int32(len(a.Laps)))
	for _, l := range a.Laps {
		writeString(&buf, l.LapType)
		binary.Write(&buf, binary.BigEndian, int32(l.LapIndex))
		binary.Write(&buf, binary.BigEndian, l.LapStart.UTC().UnixNano())
		binary.Write(&buf, binary.BigEndian, l.LapDuration)
		binary.Write(&buf, binary.BigEndian, l.LapDistance)
		writeString(&buf, l.LapTrigger)
		writeFloatPtr(&buf, l.LapMaxSpeed)
		binary.Write(&buf, binary.BigEndian, int64(l.LapCalories))
		writeFloatPtr(&buf, l.LapAvgHR)
		writeFloatPtr(&buf, l.LapMaxHR)
		writeString(&buf, l.LapIntensity)
		binary.Write(&buf, binary.BigEndian, int32(l.LapNumber))
	}

	binary.Write(&buf, binary.BigEndian, int32(len(a.Points)))
	for _, p := range a.Points {
		binary.Write(&buf, binary.BigEndian, p.Time.UTC().UnixNano())
		writeFloatPtr(&buf, p.Latitude)
		writeFloatPtr(&buf, p.Longitude)
		writeFloatPtr(&buf, p.Altitude)
		writeFloatPtr(&buf, p.Distance)
		writeIntPtr(&buf, p.HeartRate)
		binary.Write(&buf, binary.BigEndian, p.DurationFromLast)
		binary.Write(&buf, binary.BigEndian, p.DurationFromBegin)
		binary.Write(&buf, binary.BigEndian, p.SpeedMPS)
		binary.Write(&buf, binary.BigEndian, p.SpeedPerMi)
		binary.Write(&buf, binary.BigEndian, p.SpeedMPH)
		binary.Write(&buf, binary.BigEndian, p.AvgSpeedValuePerMi)
		binary.Write(&buf, binary.BigEndian, p.AvgSpeedValueMPH)
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary reverses MarshalBinary.
func (a *Activity) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)

	idBytes := make([]byte, 16)
	if _, err := io.ReadFull(r, idBytes); err != nil {
		return fmt.Errorf("reading id: %w", err)
	}
	id, err := uuid.FromBytes(idBytes)
	if err != nil {
		return fmt.Errorf("parsing id: %w", err)
	}
	a.ID = id

	a.Filename, err = readString(r)
	if err != nil {
		return fmt.Errorf("reading filename: %w", err)
	}

	var ft, sport int32
	binary.Read(r, binary.BigEndian, &ft)
	a.FileType = FileType(ft)

	var beginNano int64
	binary.Read(r, binary.BigEndian, &beginNano)
	a.BeginDateTime = time.Unix(0, beginNano).UTC()

	binary.Read(r, binary.BigEndian, &sport)
	a.Sport = sporttype.SportType(sport)

	var calories int64
	binary.Read(r, binary.BigEndian, &calories)
	a.TotalCalories = int(calories)

	binary.Read(r, binary.BigEndian, &a.TotalDistance)
	binary.Read(r, binary.BigEndian, &a.TotalDuration)
	binary.Read(r, binary.BigEndian, &a.TotalHRDur)
	binary.Read(r, binary.BigEndian, &a.TotalHRDis)

	var lapCount int32
	binary.Read(r, binary.BigEndian, &lapCount)
	a.Laps = make([]Lap, lapCount)
	for i := range a.Laps {
		l := &a.Laps[i]
		if l.LapType, err = readString(r); err != nil {
			return fmt.Errorf("reading lap %d type: %w", i, err)
		}
		var idx int32
		binary.Read(r, binary.BigEndian, &idx)
		l.LapIndex = int(idx)
		var startNano int64
		binary.Read(r, binary.BigEndian, &startNano)
		l.LapStart = time.Unix(0, startNano).UTC()
		binary.Read(r, binary.BigEndian, &l.LapDuration)
		binary.Read(r, binary.BigEndian, &l.LapDistance)
		if l.LapTrigger, err = readString(r); err != nil {
			return fmt.Errorf("reading lap %d trigger: %w", i, err)
		}
		if l.LapMaxSpeed, err = readFloatPtr(r); err != nil {
			return err
		}
		var cal int64
		binary.Read(r, binary.BigEndian, &cal)
		l.LapCalories = int(cal)
		if l.LapAvgHR, err = readFloatPtr(r); err != nil {
			return err
		}
		if l.LapMaxHR, err = readFloatPtr(r); err != nil {
			return err
		}
		if l.LapIntensity, err = readString(r); err != nil {
			return fmt.Errorf("reading lap %d intensity: %w", i, err)
		}
		var num int32
		binary.Read(r, binary.BigEndian, &num)
		l.LapNumber = int(num)
	}

	var pointCount int32
	binary.Read(r, binary.BigEndian, &pointCount)
	a.Points = make([]Point, pointCount)
	for i := range a.Points {
		p := &a.Points[i]
		var tNano int64
		binary.Read(r, binary.BigEndian, &tNano)
		p.Time = time.Unix(0, tNano).UTC()
		if p.Latitude, err = readFloatPtr(r); err != nil {
			return err
		}
		if p.Longitude, err = readFloatPtr(r); err != nil {
			return err
		}
		if p.Altitude, err = readFloatPtr(r); err != nil {
			return err
		}
		if p.Distance, err = readFloatPtr(r); err != nil {
			return err
		}
		if p.HeartRate, err = readIntPtr(r); err != nil {
			return err
		}
		binary.Read(r, binary.BigEndian, &p.DurationFromLast)
		binary.Read(r, binary.BigEndian, &p.DurationFromBegin)
		binary.Read(r, binary.BigEndian, &p.SpeedMPS)
		binary.Read(r, binary.BigEndian, &p.SpeedPerMi)
		binary.Read(r, binary.BigEndian, &p.SpeedMPH)
		binary.Read(r, binary.BigEndian, &p.AvgSpeedValuePerMi)
		binary.Read(r, binary.BigEndian, &p.AvgSpeedValueMPH)
	}

	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, int32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeFloatPtr(buf *bytes.Buffer, f *float64) {
	if f == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	binary.Write(buf, binary.BigEndian, *f)
}

func readFloatPtr(r *bytes.Reader) (*float64, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	var f float64
	if err := binary.Read(r, binary.BigEndian, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func writeIntPtr(buf *bytes.Buffer, i *int) {
	if i == nil {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(1)
	binary.Write(buf, binary.BigEndian, int64(*i))
}

func readIntPtr(r *bytes.Reader) (*int, error) {
	present, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 0 {
		return nil, nil
	}
	var i int64
	if err := binary.Read(r, binary.BigEndian, &i); err != nil {
		return nil, err
	}
	v := int(i)
	return &v, nil
}
