// Package snapshot draws the analysed region over a video frame.
package snapshot

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"vid2mid/vision"
)

// Options style the overlay.
type Options struct {
	Color    color.Color // ROI outline and label
	Label    string      // drawn above the ROI; empty shows the ROI coordinates
	FontSize float64
}

// Render returns a copy of frame with everything outside roi dimmed, the
// roi outlined and labelled.
func Render(frame image.Image, roi vision.ROI, opt Options) (image.Image, error) {
	if opt.Color == nil {
		opt.Color = color.RGBA{255, 64, 64, 255}
	}
	if opt.FontSize <= 0 {
		opt.FontSize = 14
	}
	if opt.Label == "" {
		opt.Label = fmt.Sprintf("ROI %s", roi)
	}

	b := frame.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(frame, -b.Min.X, -b.Min.Y)

	// dim the outside in four bands
	w, h := float64(b.Dx()), float64(b.Dy())
	x, y := float64(roi.X), float64(roi.Y)
	rw, rh := float64(roi.W), float64(roi.H)
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawRectangle(0, 0, w, y)
	dc.DrawRectangle(0, y+rh, w, h-y-rh)
	dc.DrawRectangle(0, y, x, rh)
	dc.DrawRectangle(x+rw, y, w-x-rw, rh)
	dc.Fill()

	dc.SetColor(opt.Color)
	dc.SetLineWidth(2)
	dc.DrawRectangle(x+1, y+1, rw-2, rh-2)
	dc.Stroke()

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: opt.FontSize}))
	ty := y - 4
	if ty < opt.FontSize {
		ty = y + rh + opt.FontSize + 2
	}
	dc.DrawString(opt.Label, x+2, ty)

	return dc.Image(), nil
}

// WritePNG renders the overlay and saves it to path.
func WritePNG(path string, frame image.Image, roi vision.ROI, opt Options) error {
	img, err := Render(frame, roi, opt)
	if err != nil {
		return err
	}
	return gg.SavePNG(path, img)
}
