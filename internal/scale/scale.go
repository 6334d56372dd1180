// Package scale parses the chat-interface scale-measurement text protocol
// and validates the readings it produces before they reach the store.
package scale

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTooFewValues is returned when a line carries fewer than five values.
var ErrTooFewValues = errors.New("scale line has fewer than 5 values")

// ErrNonPositiveMass is returned when a parsed mass is zero or negative —
// a reading a scale would never legitimately produce.
var ErrNonPositiveMass = errors.New("scale mass must be positive")

// Measurement is one decoded line of the scale protocol: mass in pounds,
// the rest as percentages.
type Measurement struct {
	Mass      float64
	FatPct    float64
	WaterPct  float64
	MusclePct float64
	BonePct   float64
}

// separators is the set of delimiters the protocol accepts between values.
// A line is split on every occurrence of any of them; a line that mixes
// them is not rejected.
const separators = ",:="

// Parse decodes a line of five non-negative integers separated by one of
// ',', ':' or '=', each scaled by 1/10 into mass (lbs), fat/water/muscle/
// bone percentages.
func Parse(line string) (Measurement, error) {
	line = strings.TrimSpace(line)

	fields := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})
	if len(fields) < 5 {
		return Measurement{}, fmt.Errorf("%q: %w", line, ErrTooFewValues)
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return Measurement{}, fmt.Errorf("parsing value %q: %w", fields[i], err)
		}
		vals[i] = float64(n) / 10
	}

	m := Measurement{
		Mass:      vals[0],
		FatPct:    vals[1],
		WaterPct:  vals[2],
		MusclePct: vals[3],
		BonePct:   vals[4],
	}
	return m, m.Validate()
}

// Validate rejects a reading with non-positive mass; a scale never reports
// zero or negative mass for an actual measurement.
func (m Measurement) Validate() error {
	if m.Mass <= 0 {
		return ErrNonPositiveMass
	}
	return nil
}
