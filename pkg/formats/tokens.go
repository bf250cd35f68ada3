package formats

import (
	"strconv"
	"strings"
)

// Delimiters shared by the room text formats.
const (
	lineSeparator    = "\n"
	sectionSeparator = "==="
)

// SplitLines splits text on '\n'. Lines are returned untrimmed; a trailing
// newline yields a final empty line.
func SplitLines(text string) []string {
	return strings.Split(text, lineSeparator)
}

// ParseFloatOrZero parses a float token, ignoring trailing whitespace.
// Unparsable tokens yield 0: existing capture files depend on this
// leniency, so callers must not treat a 0 as proof of a valid field.
func ParseFloatOrZero(token string) float32 {
	f, err := strconv.ParseFloat(strings.TrimRight(token, " \t\r\n"), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// ParseIndexOrZero parses a vertex index with the same fallback policy as
// ParseFloatOrZero.
func ParseIndexOrZero(token string) uint32 {
	n, err := strconv.ParseUint(strings.TrimRight(token, " \t\r\n"), 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// FormatFloat writes f in the shortest form that parses back to the same
// float32.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// fieldOrEmpty returns fields[i], or "" when the record is short. Combined
// with ParseFloatOrZero a missing field reads as 0.
func fieldOrEmpty(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
