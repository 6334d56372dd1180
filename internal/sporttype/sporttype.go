// Package sporttype defines the closed set of activity sports and the
// permissive alias table used to parse them from free text.
package sporttype

import "strings"

// SportType is a tagged enum over the closed set of sports the system
// recognizes. The zero value is None.
type SportType int

const (
	None SportType = iota
	Running
	Biking
	Walking
	Hiking
	Ultimate
	Elliptical
	Stairs
	Lifting
	Swimming
	Snowshoeing
	Skiing
	Other
)

// String returns the canonical lowercase token for the sport.
func (s SportType) String() string {
	switch s {
	case Running:
		return "running"
	case Biking:
		return "biking"
	case Walking:
		return "walking"
	case Hiking:
		return "hiking"
	case Ultimate:
		return "ultimate"
	case Elliptical:
		return "elliptical"
	case Stairs:
		return "stairs"
	case Lifting:
		return "lifting"
	case Swimming:
		return "swimming"
	case Snowshoeing:
		return "snowshoeing"
	case Skiing:
		return "skiing"
	case Other:
		return "other"
	default:
		return "none"
	}
}

// aliases maps every accepted spelling, case-insensitively, to its SportType.
// Includes the canonical tokens plus the alternate spellings named in the
// design notes (run, bike/ride, walk, hike, swim, lift, frisbee, nordicski).
var aliases = map[string]SportType{
	"none":        None,
	"running":     Running,
	"run":         Running,
	"biking":      Biking,
	"bike":        Biking,
	"ride":        Biking,
	"cycling":     Biking,
	"walking":     Walking,
	"walk":        Walking,
	"hiking":      Hiking,
	"hike":        Hiking,
	"ultimate":    Ultimate,
	"frisbee":     Ultimate,
	"elliptical":  Elliptical,
	"stairs":      Stairs,
	"lifting":     Lifting,
	"lift":        Lifting,
	"swimming":    Swimming,
	"swim":        Swimming,
	"snowshoeing": Snowshoeing,
	"skiing":      Skiing,
	"ski":         Skiing,
	"nordicski":   Skiing,
	"other":       Other,
}

// Parse converts free text to a SportType. It returns (None, false) when s
// is not in the vocabulary; callers that need to distinguish "absent" from
// "explicitly none" should check ok.
func Parse(s string) (SportType, bool) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

