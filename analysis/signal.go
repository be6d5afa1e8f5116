// Package analysis turns decoded frames into per-frame visual measurements.
package analysis

import (
	"fmt"
	"math"
)

// FrameSignal is everything measured on one decoded frame. Signals are
// produced once per frame in increasing FrameIndex order and never modified.
type FrameSignal struct {
	FrameIndex int

	MotionMagnitude float64 // mean flow magnitude in analysis pixels per frame
	MotionDirection float64 // radians in [0, 2π), meaningful only if HasDirection
	HasDirection    bool

	ColorDelta     float64 // change of mean ROI color, 0 below the color threshold
	IntensitySpike float64 // luma rise over the trailing baseline, 0 unless above the floor

	Hue       float64 // degrees [0, 360) of the mean ROI color
	Luminance float64 // mean ROI luma, 0-255
}

func (s FrameSignal) String() string {
	dir := "-"
	if s.HasDirection {
		dir = fmt.Sprintf("%.0f°", s.MotionDirection*180/math.Pi)
	}
	return fmt.Sprintf("#%d motion=%.2f@%s color=%.2f spike=%.2f hue=%.0f luma=%.1f",
		s.FrameIndex, s.MotionMagnitude, dir, s.ColorDelta, s.IntensitySpike, s.Hue, s.Luminance)
}
