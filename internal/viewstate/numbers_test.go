package viewstate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"4.74", 4.74},
		{"4,74", 4.74},
		{" 11 700 ", 11700},
		{"$22.56", 22.56},
		{"1٬200", 1200},
		{"-3.5", -3.5},
		{"", 0},
		{"abc", 0},
		{"..", 0},
		{"500", 500},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseAmount(tc.in), "input %q", tc.in)
	}
}
