package vision

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/viterin/vek/vek32"
)

// Options controls how a frame is reduced before anything is measured.
type Options struct {
	Blur  int // Gaussian kernel size in pixels, <= 1 disables smoothing
	Width int // analysis width after cropping, 0 keeps the ROI width
}

// Planes is a cropped and smoothed frame split into float32 channel planes
// (0-255 units), plus its luma.
type Planes struct {
	W, H    int
	R, G, B []float32
	Luma    []float32
}

// Prepare crops img to roi, optionally downsizes it and blurs it, and splits
// the result into planes. The roi is relative to the image origin.
func Prepare(img image.Image, roi ROI, opt Options) *Planes {
	crop := imaging.Crop(img, roi.Rect().Add(img.Bounds().Min))
	if opt.Width > 0 && opt.Width < crop.Bounds().Dx() {
		crop = imaging.Resize(crop, opt.Width, 0, imaging.Box)
	}
	if opt.Blur > 1 {
		crop = imaging.Blur(crop, BlurSigma(opt.Blur))
	}
	return planesOf(crop)
}

// BlurSigma converts a kernel size into a Gaussian sigma the way OpenCV
// derives it when no sigma is given.
func BlurSigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

func planesOf(img *image.NRGBA) *Planes {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := NewPlanes(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			i := y*w + x
			p.R[i] = float32(row[x*4])
			p.G[i] = float32(row[x*4+1])
			p.B[i] = float32(row[x*4+2])
		}
	}
	p.updateLuma()
	return p
}

// NewPlanes allocates zeroed planes of the given size.
func NewPlanes(w, h int) *Planes {
	n := w * h
	return &Planes{
		W:    w,
		H:    h,
		R:    make([]float32, n),
		G:    make([]float32, n),
		B:    make([]float32, n),
		Luma: make([]float32, n),
	}
}

// Rec. 601 weights
func (p *Planes) updateLuma() {
	tmp := make([]float32, len(p.R))
	vek32.MulNumber_Into(p.Luma, p.R, 0.299)
	vek32.MulNumber_Into(tmp, p.G, 0.587)
	vek32.Add_Inplace(p.Luma, tmp)
	vek32.MulNumber_Into(tmp, p.B, 0.114)
	vek32.Add_Inplace(p.Luma, tmp)
}

// MeanColor returns the per-channel mean in 0-255 units.
func (p *Planes) MeanColor() [3]float32 {
	if len(p.R) == 0 {
		return [3]float32{}
	}
	return [3]float32{vek32.Mean(p.R), vek32.Mean(p.G), vek32.Mean(p.B)}
}

// MeanLuma returns the mean luma in 0-255 units.
func (p *Planes) MeanLuma() float64 {
	if len(p.Luma) == 0 {
		return 0
	}
	return float64(vek32.Mean(p.Luma))
}
