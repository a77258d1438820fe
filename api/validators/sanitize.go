package validators

import "strings"

// SanitizeString trims and collapses runs of whitespace, then cuts the
// result to maxRunes characters. Used for free text search and filters.
func SanitizeString(input string, maxRunes int) string {
	clean := strings.Join(strings.Fields(input), " ")
	if maxRunes <= 0 {
		return clean
	}
	if r := []rune(clean); len(r) > maxRunes {
		return string(r[:maxRunes])
	}
	return clean
}
