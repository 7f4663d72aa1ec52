package judge

import "strings"

// Normalize prepares program output for comparison: leading/trailing
// whitespace trimmed, internal whitespace runs collapsed to single spaces,
// lower-cased. Idempotent.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func outputsMatch(observed, expected string) bool {
	return Normalize(observed) == Normalize(expected)
}
