package export

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanPagesCoversSourceWithoutGaps(t *testing.T) {
	cases := []struct {
		name   string
		w, h   int
		geom   PageGeometry
		expect int
	}{
		{"exactly one page", 2100, 2970, A4Portrait, 1},
		{"just over one page", 2100, 2971, A4Portrait, 2},
		{"tall table", 800, 40000, A4Portrait, 36},
		{"short strip", 1000, 10, A4Portrait, 1},
		{"square pages", 500, 2000, PageGeometry{WidthMM: 100, HeightMM: 100}, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			windows, err := PlanPages(tc.w, tc.h, tc.geom)
			require.NoError(t, err)
			require.Len(t, windows, tc.expect)

			cursor := 0.0
			for i, win := range windows {
				require.Equal(t, i, win.Index)
				require.InDelta(t, cursor, win.OffsetPx, 1e-9, "gap or overlap before page %d", i)
				require.Greater(t, win.HeightPx, 0.0)
				cursor = win.OffsetPx + win.HeightPx
			}
			require.InDelta(t, float64(tc.h), cursor, 1e-9, "windows must cover the full source")

			pageHeightPx := tc.geom.HeightMM * float64(tc.w) / tc.geom.WidthMM
			require.Equal(t, tc.expect, int(math.Ceil(float64(tc.h)/pageHeightPx)))
		})
	}
}

func TestPlanPagesRejectsBadInputs(t *testing.T) {
	_, err := PlanPages(0, 100, A4Portrait)
	require.Error(t, err)
	_, err = PlanPages(100, -1, A4Portrait)
	require.Error(t, err)
	_, err = PlanPages(100, 100, PageGeometry{})
	require.Error(t, err)
}

func TestBuildPDFProducesOnePDFPagePerWindow(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 420, 1200))
	for y := 0; y < 1200; y++ {
		for x := 0; x < 420; x++ {
			img.Set(x, y, color.RGBA{R: uint8(y % 256), G: 0x80, B: 0x20, A: 0xff})
		}
	}

	// 420px wide on a 210mm page -> page height 594px -> 3 pages.
	windows, err := PlanPages(420, 1200, A4Portrait)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	pdf, err := BuildPDF(img, A4Portrait)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	require.Greater(t, len(pdf), 1000)
}
