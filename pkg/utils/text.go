package utils

import "strings"

// SplitPatterns splits a comma-separated pattern argument. Empty segments are
// dropped because an empty expression would match every URL. Segments are not
// trimmed: whitespace is significant in a regular expression.
func SplitPatterns(arg string) []string {
	parts := strings.Split(arg, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// UniqueStrings removes repeated values, keeping the first occurrence order.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, s := range values {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}
