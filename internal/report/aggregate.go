package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ddboline/garmin-go/internal/store"
)

// Row is one grouped roll-up: LevelFile emits one row per activity; the
// period levels (day/week/month/year) emit one row per (period, sport).
type Row struct {
	Period        string
	Sport         string
	Count         int
	TotalDistance float64 // meters
	TotalDuration float64 // seconds
	TotalCalories int
	Format        string // humanized pace/speed/duration per sportClass
}

// sportClass buckets a sport into its display formatting family.
type sportClass int

const (
	classDuration sportClass = iota
	classPace
	classMPH
)

func classify(sport string) sportClass {
	switch sport {
	case "running", "walking", "hiking":
		return classPace
	case "biking":
		return classMPH
	default:
		return classDuration
	}
}

const metersPerMile = 1609.344

// Aggregate groups summaries (already filtered by Matches) per q.Level and
// formats each group's pace/speed/duration per its sport class.
func Aggregate(level Level, summaries []store.ActivitySummary, loc *time.Location) []Row {
	if level == LevelFile {
		ordered := make([]store.ActivitySummary, len(summaries))
		copy(ordered, summaries)
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].BeginDateTime.Before(ordered[j].BeginDateTime) })

		rows := make([]Row, len(ordered))
		for i, s := range ordered {
			rows[i] = Row{
				Period:        s.Filename,
				Sport:         s.Sport,
				Count:         1,
				TotalDistance: s.TotalDistance,
				TotalDuration: s.TotalDuration,
				TotalCalories: s.TotalCalories,
				Format:        formatActivity(s.Sport, s.TotalDistance, s.TotalDuration),
			}
		}
		return rows
	}

	type key struct{ period, sport string }
	groups := make(map[key]*Row)
	var order []key

	for _, s := range summaries {
		period := periodKey(level, s.BeginDateTime.In(loc))
		k := key{period, s.Sport}
		g, ok := groups[k]
		if !ok {
			g = &Row{Period: period, Sport: s.Sport}
			groups[k] = g
			order = append(order, k)
		}
		g.Count++
		g.TotalDistance += s.TotalDistance
		g.TotalDuration += s.TotalDuration
		g.TotalCalories += s.TotalCalories
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].period != order[j].period {
			return order[i].period < order[j].period
		}
		return order[i].sport < order[j].sport
	})

	rows := make([]Row, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.Format = formatActivity(g.Sport, g.TotalDistance, g.TotalDuration)
		rows = append(rows, *g)
	}
	return rows
}

// periodKey buckets t into the string key for level, using the calendar
// system of loc (the caller has already converted t into that zone).
func periodKey(level Level, t time.Time) string {
	switch level {
	case LevelDay:
		return t.Format("2006-01-02")
	case LevelWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04dw%02d", y, w)
	case LevelMonth:
		return t.Format("2006-01")
	case LevelYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// formatActivity renders a group's totals per its sport's formatting class:
// running/walking/hiking get a pace (min/mile), biking gets mph, everything
// else gets a plain duration.
func formatActivity(sport string, distanceMeters, durationSeconds float64) string {
	switch classify(sport) {
	case classPace:
		if distanceMeters <= 0 {
			return "--"
		}
		miles := distanceMeters / metersPerMile
		paceSec := time.Duration(durationSeconds/miles) * time.Second
		return fmt.Sprintf("%d:%02d/mi", int(paceSec.Minutes()), int(paceSec.Seconds())%60)
	case classMPH:
		if durationSeconds <= 0 {
			return "--"
		}
		miles := distanceMeters / metersPerMile
		mph := miles / (durationSeconds / 3600)
		return fmt.Sprintf("%.1f mph", mph)
	default:
		return (time.Duration(durationSeconds) * time.Second).String()
	}
}

// FormatDistance renders a meter total as a comma-grouped mile figure for
// the report browser's summary lines.
func FormatDistance(meters float64) string {
	miles := meters / metersPerMile
	return humanize.CommafWithDigits(miles, 2) + " mi"
}
