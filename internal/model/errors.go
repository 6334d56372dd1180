package model

import "errors"

// Error kinds shared across parser dispatch. Parser-local failures
// (malformed time, malformed number, malformed structure) are carried as
// one sentinel family here rather than split per-parser, since every
// caller handles them identically: log and skip the offending file.
var (
	ErrInvalidExtension   = errors.New("invalid file extension")
	ErrFileNotFound       = errors.New("file not found")
	ErrMalformedTime      = errors.New("malformed time")
	ErrMalformedNumber    = errors.New("malformed number")
	ErrMalformedStructure = errors.New("malformed structure")
	ErrEmptyLap           = errors.New("activity has no laps, or first lap has no start time")
)
