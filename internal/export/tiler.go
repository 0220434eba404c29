// Package export renders the full grouped/filtered price list to a
// raster image and tiles it into fixed-size PDF pages.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/phpdave11/gofpdf"
)

// PageGeometry is the physical page size in millimetres.
type PageGeometry struct {
	WidthMM  float64
	HeightMM float64
}

// A4Portrait is the default export page size.
var A4Portrait = PageGeometry{WidthMM: 210, HeightMM: 297}

// PageWindow is the vertical slice of the source image visible on one
// page, in source pixels.
type PageWindow struct {
	Index    int
	OffsetPx float64
	HeightPx float64
}

// PlanPages computes the page windows for a source image of the given
// pixel dimensions. The page height in pixels follows from the image's
// horizontal density (the image width maps exactly onto the page
// width), and the windows cover [0, heightPx) with no gaps and no
// overlap; only the final page may trail past the image's end.
func PlanPages(widthPx, heightPx int, geom PageGeometry) ([]PageWindow, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return nil, fmt.Errorf("export: invalid image size %dx%d", widthPx, heightPx)
	}
	if geom.WidthMM <= 0 || geom.HeightMM <= 0 {
		return nil, errors.New("export: invalid page geometry")
	}
	pageHeightPx := geom.HeightMM * float64(widthPx) / geom.WidthMM
	pages := int(math.Ceil(float64(heightPx) / pageHeightPx))
	out := make([]PageWindow, 0, pages)
	for i := 0; i < pages; i++ {
		offset := pageHeightPx * float64(i)
		height := pageHeightPx
		if rest := float64(heightPx) - offset; rest < height {
			height = rest
		}
		out = append(out, PageWindow{Index: i, OffsetPx: offset, HeightPx: height})
	}
	return out, nil
}

// BuildPDF tiles the rasterized table into a paginated document. The
// image is scaled once so its width fills the page exactly; each page
// draws the same image at a negative vertical offset, i.e. a fixed
// window sliding down the one tall source.
func BuildPDF(img image.Image, geom PageGeometry) ([]byte, error) {
	bounds := img.Bounds()
	windows, err := PlanPages(bounds.Dx(), bounds.Dy(), geom)
	if err != nil {
		return nil, err
	}

	var png bytes.Buffer
	if err := imaging.Encode(&png, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("export: encode raster: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: geom.WidthMM, Ht: geom.HeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("table", opts, bytes.NewReader(png.Bytes()))
	imgHeightMM := float64(bounds.Dy()) * geom.WidthMM / float64(bounds.Dx())

	for _, window := range windows {
		pdf.AddPage()
		y := -geom.HeightMM * float64(window.Index)
		pdf.ImageOptions("table", 0, y, geom.WidthMM, imgHeightMM, false, opts, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("export: write pdf: %w", err)
	}
	return out.Bytes(), nil
}
