package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatRate renders a rate for display: "0" for unknown, grouped
// thousands with 2-4 decimals from 100 up, 4 decimals from 1, 6 below.
func FormatRate(rate float64) string {
	switch {
	case math.IsNaN(rate) || math.IsInf(rate, 0):
		return "-"
	case rate == 0:
		return "0"
	case math.Abs(rate) >= 100:
		return FormatWithCommas(rate)
	case math.Abs(rate) >= 1:
		return strconv.FormatFloat(rate, 'f', 4, 64)
	default:
		return strconv.FormatFloat(rate, 'f', 6, 64)
	}
}

// FormatWithCommas groups the integer part in thousands and keeps between
// two and four decimals.
func FormatWithCommas(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "-"
	}

	s := strconv.FormatFloat(value, 'f', 4, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")
	for len(frac) > 2 && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
