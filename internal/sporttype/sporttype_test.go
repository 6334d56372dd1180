package sporttype

import "testing"

func TestParseAliases(t *testing.T) {
	cases := map[string]SportType{
		"running":   Running,
		"Run":       Running,
		"BIKE":      Biking,
		"ride":      Biking,
		"walk":      Walking,
		"hike":      Hiking,
		"frisbee":   Ultimate,
		"lift":      Lifting,
		"swim":      Swimming,
		"nordicski": Skiing,
		"ski":       Skiing,
		"none":      None,
	}
	for input, want := range cases {
		got, ok := Parse(input)
		if !ok {
			t.Errorf("Parse(%q): not in vocabulary", input)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, ok := Parse("unicycling"); ok {
		t.Error("expected unicycling to be out of vocabulary")
	}
}

func TestStringRoundTrip(t *testing.T) {
	all := []SportType{None, Running, Biking, Walking, Hiking, Ultimate, Elliptical,
		Stairs, Lifting, Swimming, Snowshoeing, Skiing, Other}
	for _, s := range all {
		got, ok := Parse(s.String())
		if !ok || got != s {
			t.Errorf("round trip failed for %v: String()=%q Parse->%v,%v", s, s.String(), got, ok)
		}
	}
}
