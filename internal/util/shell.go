package util

import "strings"

// QuoteArg wraps s in single quotes so it can be interpolated into a shell
// command line without word splitting or expansion.
func QuoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Dedupe removes duplicates from ss, keeping first occurrences in order.
func Dedupe(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := ss[:0]
	for _, s := range ss {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
