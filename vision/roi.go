package vision

import (
	"fmt"
	"image"
)

// ROI is the analysed rectangle of every frame, in source pixel coordinates.
type ROI struct {
	X, Y, W, H int
}

// FullFrame returns an ROI covering a frame of the given size.
func FullFrame(size image.Point) ROI {
	return ROI{W: size.X, H: size.Y}
}

// Rect returns the ROI as an image.Rectangle.
func (r ROI) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// IsZero reports whether the ROI was left unset.
func (r ROI) IsZero() bool {
	return r == ROI{}
}

// Validate checks that the ROI has a positive area and lies inside a frame of
// the given size.
func (r ROI) Validate(size image.Point) error {
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("roi %v: width and height must be positive", r)
	}
	if r.X < 0 || r.Y < 0 {
		return fmt.Errorf("roi %v: origin must not be negative", r)
	}
	if r.X+r.W > size.X || r.Y+r.H > size.Y {
		return fmt.Errorf("roi %v: exceeds frame %dx%d", r, size.X, size.Y)
	}
	return nil
}

func (r ROI) String() string {
	return fmt.Sprintf("[%d %d %d %d]", r.X, r.Y, r.W, r.H)
}
