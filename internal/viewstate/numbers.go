// Package viewstate owns the mutable view session: filters, font size,
// the single in-progress edit, and the locally persisted preferences
// that override server state.
package viewstate

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts possibly locale-formatted user input into a
// number. Commas count as decimal separators and every other
// non-numeric character is stripped. Invalid or empty input coerces to
// 0; parsing never fails a commit.
func ParseAmount(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
