package orchestrator

import "strconv"

// ParseCalories extracts the first integer found in free-text AI output,
// e.g. "approximately 650 kcal, well done" -> 650. The second return is
// false when no integer is present; callers record 0 with a low-confidence
// flag instead of failing outright.
func ParseCalories(s string) (int, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			continue
		}
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(s[i:j])
		if err != nil {
			// run too long to fit an int; skip past it
			i = j
			continue
		}
		return n, true
	}
	return 0, false
}
