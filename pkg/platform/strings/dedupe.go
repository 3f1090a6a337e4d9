// Package strings holds small string helpers shared by config parsing.
package strings

import "strings"

// DedupeAndTrim trims each value and drops blanks and repeats, keeping
// first-seen order. Used for comma separated env lists such as broker
// addresses.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
