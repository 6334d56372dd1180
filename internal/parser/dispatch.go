// Package parser dispatches activity files to the format-specific decoder,
// applies correction overlays, and assembles the canonical activity record.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ddboline/garmin-go/internal/model"
	"github.com/ddboline/garmin-go/internal/sporttype"
)

// ParseFile reads path, picks a parser by extension, applies corr, and
// returns the canonical Activity. loc is the default time zone used by the
// free-text parser's wall-clock assembly.
func ParseFile(path string, corr model.CorrectionMap, loc *time.Location) (*model.Activity, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, model.ErrFileNotFound)
		}
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var laps []model.Lap
	var points []model.Point
	var sport sporttype.SportType
	var fileType model.FileType

	name := filepath.Base(path)
	lower := strings.ToLower(name)

	switch {
	case strings.HasSuffix(lower, ".fit"):
		fileType = model.FileTypeBinary
		laps, points, sport, err = ParseFit(data)

	case strings.HasSuffix(lower, ".tcx.gz"):
		fileType = model.FileTypeGzippedXML
		laps, points, sport, err = ParseXML(data, DialectTCX, true)

	case strings.HasSuffix(lower, ".tcx"):
		fileType = model.FileTypeXML
		laps, points, sport, err = ParseXML(data, DialectTCX, false)

	case strings.HasSuffix(lower, ".gmn"):
		fileType = model.FileTypeXML
		laps, points, sport, err = ParseXML(data, DialectGMN, false)

	case strings.HasSuffix(lower, ".txt"):
		fileType = model.FileTypeText
		laps, points, sport, err = ParseText(data, loc)

	default:
		return nil, fmt.Errorf("%s: %w", path, model.ErrInvalidExtension)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	laps, sport = corr.Apply(laps, sport)

	if len(laps) == 0 || laps[0].LapStart.IsZero() {
		return nil, fmt.Errorf("%s: %w", path, model.ErrEmptyLap)
	}

	activity, err := model.NewActivity(name, fileType, laps, points)
	if err != nil {
		return nil, fmt.Errorf("composing activity for %s: %w", path, err)
	}
	activity.Sport = sport

	return activity, nil
}
