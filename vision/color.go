package vision

import (
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/viterin/vek/vek32"
)

// Hue returns the HSV hue, in degrees [0, 360), of an RGB triple in 0-255
// units. Greys have hue 0.
func Hue(rgb [3]float32) float64 {
	c := colorful.Color{
		R: float64(rgb[0]) / 255,
		G: float64(rgb[1]) / 255,
		B: float64(rgb[2]) / 255,
	}
	h, _, _ := c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return h
}

// ColorDistance is the Euclidean distance between two mean colors.
func ColorDistance(a, b [3]float32) float64 {
	return float64(vek32.Distance(a[:], b[:]))
}
