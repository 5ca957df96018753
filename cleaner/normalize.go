package cleaner

import "strings"

// NormalizeSpace collapses every run of whitespace (including non-breaking
// spaces) into a single space and trims both ends.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
