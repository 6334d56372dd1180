package model

import (
	"testing"
	"time"

	"github.com/ddboline/garmin-go/internal/sporttype"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parsing time %q: %v", s, err)
	}
	return tm
}

func TestNewActivityInvariants(t *testing.T) {
	start := mustTime(t, "2020-06-01T12:00:00Z")
	hr := 150.0
	laps := []Lap{
		{LapIndex: 0, LapStart: start, LapDuration: 100, LapDistance: 500, LapCalories: 40, LapAvgHR: &hr, LapNumber: 0},
		{LapIndex: 1, LapStart: start.Add(100 * time.Second), LapDuration: 200, LapDistance: 700, LapCalories: 60, LapNumber: 1},
	}
	a, err := NewActivity("test.fit", FileTypeBinary, laps, nil)
	if err != nil {
		t.Fatalf("NewActivity: %v", err)
	}

	if !a.BeginDateTime.Equal(a.Laps[0].LapStart) {
		t.Error("begin_datetime must equal laps[0].lap_start")
	}
	for i, l := range a.Laps {
		if l.LapIndex != i {
			t.Errorf("lap %d has LapIndex %d", i, l.LapIndex)
		}
	}
	if a.TotalCalories != 100 {
		t.Errorf("TotalCalories = %d, want 100", a.TotalCalories)
	}
	if a.TotalDistance != 1200 {
		t.Errorf("TotalDistance = %v, want 1200", a.TotalDistance)
	}
	if a.TotalDuration != 300 {
		t.Errorf("TotalDuration = %v, want 300", a.TotalDuration)
	}
	if a.TotalHRDur != 150*100 {
		t.Errorf("TotalHRDur = %v, want %v", a.TotalHRDur, 150*100)
	}
	if a.TotalHRDis != 100 {
		t.Errorf("TotalHRDis = %v, want 100", a.TotalHRDis)
	}
}

func TestNewActivityEmptyLaps(t *testing.T) {
	if _, err := NewActivity("x.fit", FileTypeBinary, nil, nil); err != ErrEmptyLap {
		t.Errorf("expected ErrEmptyLap, got %v", err)
	}
}

func TestDerivePointDurations(t *testing.T) {
	base := mustTime(t, "2020-06-01T12:00:00Z")
	points := []Point{
		{Time: base},
		{Time: base.Add(10 * time.Second)},
		{Time: base.Add(25 * time.Second)},
	}
	points = DerivePointDurations(points)
	if points[0].DurationFromLast != 0 {
		t.Errorf("first point DurationFromLast = %v, want 0", points[0].DurationFromLast)
	}
	if points[1].DurationFromLast != 10 || points[1].DurationFromBegin != 10 {
		t.Errorf("point 1 = %+v", points[1])
	}
	if points[2].DurationFromLast != 15 || points[2].DurationFromBegin != 25 {
		t.Errorf("point 2 = %+v", points[2])
	}
}

func TestRenumberLaps(t *testing.T) {
	laps := []Lap{
		{LapIndex: 5, LapNumber: 5},
		{LapIndex: 9, LapNumber: 1},
	}
	laps = RenumberLaps(laps)
	if laps[0].LapIndex != 0 || laps[1].LapIndex != 1 {
		t.Fatalf("lap indices not renumbered: %+v", laps)
	}
	if laps[1].LapNumber != 1 {
		t.Errorf("LapNumber should keep max(existing, position): got %d", laps[1].LapNumber)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	start := mustTime(t, "2020-06-01T12:00:00Z")
	lat, lon, alt, dist := 40.123456, -73.654321, 12.5, 100.25
	hr := 5
	laps := []Lap{
		{LapIndex: 0, LapStart: start, LapDuration: 123.456, LapDistance: 987.654, LapCalories: 77, LapNumber: 0},
	}
	points := []Point{
		{Time: start, Latitude: &lat, Longitude: &lon, Altitude: &alt, Distance: &dist, HeartRate: &hr, SpeedMPS: 3.1415926535},
	}
	a, err := NewActivity("round.fit", FileTypeBinary, laps, points)
	if err != nil {
		t.Fatalf("NewActivity: %v", err)
	}
	a.Sport = sporttype.Running

	data, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	var b Activity
	if err := b.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}

	if b.ID != a.ID || b.Filename != a.Filename || b.Sport != a.Sport {
		t.Fatalf("round trip mismatch on scalar fields: %+v vs %+v", a, b)
	}
	if !b.BeginDateTime.Equal(a.BeginDateTime) {
		t.Errorf("BeginDateTime mismatch: %v vs %v", a.BeginDateTime, b.BeginDateTime)
	}
	if b.Points[0].SpeedMPS != a.Points[0].SpeedMPS {
		t.Errorf("SpeedMPS not bit-exact: %v vs %v", a.Points[0].SpeedMPS, b.Points[0].SpeedMPS)
	}
	if *b.Points[0].Latitude != *a.Points[0].Latitude {
		t.Errorf("Latitude not bit-exact: %v vs %v", *a.Points[0].Latitude, *b.Points[0].Latitude)
	}
	if *b.Points[0].HeartRate != *a.Points[0].HeartRate {
		t.Errorf("HeartRate mismatch: %v vs %v", *a.Points[0].HeartRate, *b.Points[0].HeartRate)
	}
}

func TestCorrectionApplyKeysOnFirstLapStart(t *testing.T) {
	first := mustTime(t, "2011-07-04T08:58:27Z")
	second := first.Add(600 * time.Second)
	dist := 3.10685596
	corr := Correction{StartTime: first, LapNumber: 0, Distance: &dist}
	m := NewCorrectionMap([]Correction{corr})

	laps := []Lap{
		{LapIndex: 0, LapStart: first, LapNumber: 0, LapDistance: 1000},
		{LapIndex: 1, LapStart: second, LapNumber: 1, LapDistance: 2000},
	}

	out, _ := m.Apply(laps, sporttype.Running)
	got := out[0].LapDistance
	want := dist * metersPerMile
	if diffAbs(got, want) > 1e-6 {
		t.Errorf("corrected distance = %v, want ~%v", got, want)
	}
	if out[1].LapDistance != 2000 {
		t.Errorf("uncorrected lap changed: %v", out[1].LapDistance)
	}
}

func TestCorrectionSportOnlyWhenNotNone(t *testing.T) {
	first := mustTime(t, "2020-01-01T00:00:00Z")
	none := sporttype.None
	corr := Correction{StartTime: first, LapNumber: 0, Sport: &none}
	m := NewCorrectionMap([]Correction{corr})
	laps := []Lap{{LapIndex: 0, LapStart: first, LapNumber: 0}}

	_, sport := m.Apply(laps, sporttype.Running)
	if sport != sporttype.Running {
		t.Errorf("sport should not change when correction sport is None, got %v", sport)
	}

	biking := sporttype.Biking
	corr2 := Correction{StartTime: first, LapNumber: 0, Sport: &biking}
	m2 := NewCorrectionMap([]Correction{corr2})
	_, sport2 := m2.Apply(laps, sporttype.Running)
	if sport2 != sporttype.Biking {
		t.Errorf("sport should change to Biking, got %v", sport2)
	}
}

func diffAbs(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
