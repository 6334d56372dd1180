package parser

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/ddboline/garmin-go/internal/sporttype"
)

const sampleTCX = `<?xml version="1.0" encoding="UTF-8"?>
<TrainingCenterDatabase>
  <Activities>
    <Activity Sport="Biking">
      <Lap StartTime="2020-06-01T12:00:00Z">
        <TotalTimeSeconds>120</TotalTimeSeconds>
        <DistanceMeters>600</DistanceMeters>
        <Calories>50</Calories>
        <Intensity>Active</Intensity>
        <TriggerMethod>Manual</TriggerMethod>
        <Track>
          <Trackpoint>
            <Time>2020-06-01T12:00:00Z</Time>
            <Position>
              <LatitudeDegrees>40.0</LatitudeDegrees>
              <LongitudeDegrees>-73.0</LongitudeDegrees>
            </Position>
            <DistanceMeters>0</DistanceMeters>
          </Trackpoint>
          <Trackpoint>
            <Time>2020-06-01T12:01:00Z</Time>
            <Position>
              <LatitudeDegrees>40.01</LatitudeDegrees>
              <LongitudeDegrees>-73.01</LongitudeDegrees>
            </Position>
            <DistanceMeters>300</DistanceMeters>
            <Extensions>
              <TPX>
                <Speed>5.0</Speed>
              </TPX>
            </Extensions>
          </Trackpoint>
          <Trackpoint>
            <Time>2020-06-01T12:02:00Z</Time>
            <Position>
              <LatitudeDegrees>40.02</LatitudeDegrees>
              <LongitudeDegrees>-73.02</LongitudeDegrees>
            </Position>
            <DistanceMeters>600</DistanceMeters>
          </Trackpoint>
        </Track>
      </Lap>
    </Activity>
  </Activities>
</TrainingCenterDatabase>`

func TestParseXMLTCX(t *testing.T) {
	laps, points, sport, err := ParseXML([]byte(sampleTCX), DialectTCX, false)
	if err != nil {
		t.Fatalf("ParseXML: %v", err)
	}
	if sport != sporttype.Biking {
		t.Errorf("sport = %v, want Biking", sport)
	}
	if len(laps) != 1 {
		t.Fatalf("expected 1 lap, got %d", len(laps))
	}
	if laps[0].LapDuration != 120 || laps[0].LapDistance != 600 {
		t.Errorf("lap totals wrong: %+v", laps[0])
	}
	// The first trackpoint has DistanceMeters == 0 and must be dropped
	// by the distance > 0 filter.
	if len(points) != 2 {
		t.Fatalf("expected 2 points (first dropped for distance<=0), got %d", len(points))
	}
	if points[0].SpeedMPS != 5.0 {
		t.Errorf("expected TPX extension speed to be read, got %v", points[0].SpeedMPS)
	}
}

func TestParseXMLTCXGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(sampleTCX)); err != nil {
		t.Fatalf("writing gzip fixture: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing gzip fixture: %v", err)
	}

	laps, _, _, err := ParseXML(buf.Bytes(), DialectTCX, true)
	if err != nil {
		t.Fatalf("ParseXML with isGzip: %v", err)
	}
	if len(laps) != 1 {
		t.Fatalf("expected 1 lap from gzipped input, got %d", len(laps))
	}
}

const sampleGMN = `<?xml version="1.0"?>
<run sport="running">
  <lap start_time="2021-01-01T06:00:00Z">
    <duration>60</duration>
    <distance>200</distance>
    <calories>20</calories>
    <point>
      <time>2021-01-01T06:00:00Z</time>
      <lat>10.0</lat>
      <lon>20.0</lon>
      <distance>100</distance>
    </point>
    <point>
      <time>2021-01-01T06:01:00Z</time>
      <lat>10.01</lat>
      <lon>20.01</lon>
      <distance>200</distance>
    </point>
  </lap>
</run>`

func TestParseXMLGMN(t *testing.T) {
	laps, points, sport, err := ParseXML([]byte(sampleGMN), DialectGMN, false)
	if err != nil {
		t.Fatalf("ParseXML gmn: %v", err)
	}
	if sport != sporttype.Running {
		t.Errorf("sport = %v, want Running", sport)
	}
	if len(laps) != 1 || len(points) != 2 {
		t.Fatalf("unexpected shape: %d laps, %d points", len(laps), len(points))
	}
}
