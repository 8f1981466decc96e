package orchestrator

import "testing"

func TestParseCalories(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		parsed bool
	}{
		{"approximately 650 kcal, well done", 650, true},
		{"650", 650, true},
		{"I'd say 1,200 or so", 1, true}, // first integer wins
		{"around 90-110 kcal", 90, true},
		{"no idea, sorry", 0, false},
		{"", 0, false},
		{"zero calories: 0 kcal", 0, true},
	}
	for _, c := range cases {
		got, parsed := ParseCalories(c.in)
		if got != c.want || parsed != c.parsed {
			t.Fatalf("ParseCalories(%q) = (%d, %v), want (%d, %v)", c.in, got, parsed, c.want, c.parsed)
		}
	}
}
