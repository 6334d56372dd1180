// Package report compiles human-typed filter tokens into structured query
// fragments and drives the grouped roll-ups those fragments filter.
package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ddboline/garmin-go/internal/sporttype"
	"github.com/ddboline/garmin-go/internal/store"
)

// Level is the report aggregation granularity a token stream selects.
type Level int

const (
	LevelFile Level = iota
	LevelDay
	LevelWeek
	LevelMonth
	LevelYear
)

func (l Level) String() string {
	switch l {
	case LevelDay:
		return "day"
	case LevelWeek:
		return "week"
	case LevelMonth:
		return "month"
	case LevelYear:
		return "year"
	default:
		return "file"
	}
}

var levelTokens = map[string]Level{
	"file":  LevelFile,
	"day":   LevelDay,
	"week":  LevelWeek,
	"month": LevelMonth,
	"year":  LevelYear,
}

// constraintKind distinguishes the shape of a compiled Constraint.
type constraintKind int

const (
	kindLatest constraintKind = iota
	kindISOWeek
	kindDate
	kindYearMonth
	kindYear
	kindBeginDatetime
	kindFilename
	kindSubstring
)

// Constraint is one disjunct of a compiled query: a single token's effect.
type Constraint struct {
	kind constraintKind

	isoYear, isoWeek int
	year, month, day int
	instant          time.Time
	text             string
}

// Query is the result of compiling a token stream: an aggregation level, an
// optional sport filter, and a set of constraints combined disjunctively.
type Query struct {
	Level       Level
	Sport       sporttype.SportType
	HasSport    bool
	Constraints []Constraint
}

var (
	isoWeekRe  = regexp.MustCompile(`^(\d{4})w(\d{2})$`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonRe  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearRe     = regexp.MustCompile(`^\d{4}$`)
)

// Compile parses an ordered token sequence (one human-typed filter phrase
// per token) into a Query. filenames is the set of known GPS
// source filenames, consulted so an exact filename match takes precedence
// over the catch-all substring-on-name branch.
func Compile(tokens []string, filenames map[string]bool) Query {
	q := Query{Level: LevelFile}

	for _, raw := range tokens {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		lower := strings.ToLower(tok)

		if level, ok := levelTokens[lower]; ok {
			q.Level = level
			continue
		}
		if lower == "sport" {
			q.HasSport = false
			q.Sport = sporttype.None
			continue
		}
		if lower == "latest" {
			q.Constraints = append(q.Constraints, Constraint{kind: kindLatest})
			continue
		}
		if sport, ok := sporttype.Parse(tok); ok {
			q.HasSport = true
			q.Sport = sport
			continue
		}
		if m := isoWeekRe.FindStringSubmatch(lower); m != nil {
			year, _ := strconv.Atoi(m[1])
			week, _ := strconv.Atoi(m[2])
			q.Constraints = append(q.Constraints, Constraint{kind: kindISOWeek, isoYear: year, isoWeek: week})
			continue
		}
		if dateRe.MatchString(tok) {
			t, err := time.Parse("2006-01-02", tok)
			if err == nil {
				q.Constraints = append(q.Constraints, Constraint{kind: kindDate, year: t.Year(), month: int(t.Month()), day: t.Day()})
				continue
			}
		}
		if yearMonRe.MatchString(tok) {
			t, err := time.Parse("2006-01", tok)
			if err == nil {
				q.Constraints = append(q.Constraints, Constraint{kind: kindYearMonth, year: t.Year(), month: int(t.Month())})
				continue
			}
		}
		if yearRe.MatchString(tok) {
			year, _ := strconv.Atoi(tok)
			q.Constraints = append(q.Constraints, Constraint{kind: kindYear, year: year})
			continue
		}
		if instant, err := time.Parse(time.RFC3339, tok); err == nil {
			q.Constraints = append(q.Constraints, Constraint{kind: kindBeginDatetime, instant: instant.UTC()})
			continue
		}
		if filenames[tok] {
			q.Constraints = append(q.Constraints, Constraint{kind: kindFilename, text: tok})
			continue
		}

		// A malformed or unrecognized token never fails the compile; it
		// always falls through to a substring match.
		q.Constraints = append(q.Constraints, Constraint{kind: kindSubstring, text: tok})
	}

	return q
}

// Matches filters summaries against q: the sport filter (if any) applies as
// an AND, and the constraint list applies disjunctively (an empty
// constraint list matches everything). loc is the default report time zone
// used to evaluate localtime-based constraints: report binning uses the
// default zone, not UTC.
func Matches(q Query, summaries []store.ActivitySummary, loc *time.Location) []store.ActivitySummary {
	var latest time.Time
	for _, s := range summaries {
		if s.BeginDateTime.After(latest) {
			latest = s.BeginDateTime
		}
	}

	var out []store.ActivitySummary
	for _, s := range summaries {
		if q.HasSport && !strings.EqualFold(s.Sport, q.Sport.String()) {
			continue
		}
		if len(q.Constraints) == 0 || anyMatch(q.Constraints, s, loc, latest) {
			out = append(out, s)
		}
	}
	return out
}

func anyMatch(cs []Constraint, s store.ActivitySummary, loc *time.Location, latest time.Time) bool {
	for _, c := range cs {
		if constraintMatches(c, s, loc, latest) {
			return true
		}
	}
	return false
}

func constraintMatches(c Constraint, s store.ActivitySummary, loc *time.Location, latest time.Time) bool {
	switch c.kind {
	case kindLatest:
		return s.BeginDateTime.Equal(latest)
	case kindISOWeek:
		y, w := s.BeginDateTime.In(loc).ISOWeek()
		return y == c.isoYear && w == c.isoWeek
	case kindDate:
		t := s.BeginDateTime.In(loc)
		return t.Year() == c.year && int(t.Month()) == c.month && t.Day() == c.day
	case kindYearMonth:
		t := s.BeginDateTime.In(loc)
		return t.Year() == c.year && int(t.Month()) == c.month
	case kindYear:
		return s.BeginDateTime.In(loc).Year() == c.year
	case kindBeginDatetime:
		return s.BeginDateTime.UTC().Equal(c.instant)
	case kindFilename:
		return s.Filename == c.text
	case kindSubstring:
		return strings.Contains(strings.ToLower(s.Filename), strings.ToLower(c.text))
	default:
		return false
	}
}
