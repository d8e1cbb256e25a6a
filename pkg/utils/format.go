package utils

import "strconv"

// FormatPct formats an integer percentage exactly as given, e.g. 73 → "73%".
func FormatPct(v int) string {
	return strconv.Itoa(v) + "%"
}

// ClampPct limits v to the drawable range [0, 100].
func ClampPct(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
