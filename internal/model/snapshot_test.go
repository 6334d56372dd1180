package model

import "testing"

func TestSnapshotWriteRead(t *testing.T) {
	dir := t.TempDir()
	start := mustTime(t, "2020-06-01T12:00:00Z")
	hr := 140
	dist := 42.5
	laps := []Lap{
		{LapIndex: 0, LapStart: start, LapDuration: 60, LapDistance: 250, LapNumber: 0},
	}
	points := []Point{
		{Time: start, Distance: &dist, HeartRate: &hr},
	}
	a, err := NewActivity("2020-06-01-run.tcx", FileTypeXML, laps, points)
	if err != nil {
		t.Fatalf("NewActivity: %v", err)
	}

	if err := a.WriteSnapshot(dir); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}

	got, err := ReadSnapshot(SnapshotPath(dir, a.Filename))
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.ID != a.ID || got.Filename != a.Filename {
		t.Errorf("snapshot identity mismatch: %+v vs %+v", got, a)
	}
	if len(got.Points) != 1 || *got.Points[0].HeartRate != hr {
		t.Errorf("snapshot points mismatch: %+v", got.Points)
	}
	if !got.BeginDateTime.Equal(start) {
		t.Errorf("BeginDateTime = %v, want %v", got.BeginDateTime, start)
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	if _, err := ReadSnapshot(SnapshotPath(t.TempDir(), "absent.fit")); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}
