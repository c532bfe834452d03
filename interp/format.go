package interp

import (
	"math"
	"strconv"
	"strings"
)

// formatFloat formats v for diagnostics, in the shortest form that
// round-trips and always with fraction or exponent: 10 is "10.0",
// 1e-05 is "1e-05", 1e16 is "1e+16".
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// formatDims formats shape as tuple: (3,) or (2, 3).
func formatDims(dims []int) string {
	var b strings.Builder
	b.WriteRune('(')
	for i, d := range dims {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(d))
	}
	if len(dims) == 1 {
		b.WriteRune(',')
	}
	b.WriteRune(')')
	return b.String()
}
