package sheet

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts UI text to a non-negative number. Empty, malformed
// or negative input is treated as zero. A comma is accepted as the decimal
// separator.
func ParseNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	text = strings.ReplaceAll(text, ",", ".")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// ParseRound converts UI text to a round count, dropping any fraction.
func ParseRound(text string) int {
	v := ParseNumber(text)
	if v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

// FormatNumber renders a number for an input field; zero renders empty.
func FormatNumber(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
