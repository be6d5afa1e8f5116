package sequencer

import (
	"fmt"
	"math"

	"vid2mid/analysis"
)

// SignalSelector picks one measurement out of a frame signal.
type SignalSelector func(analysis.FrameSignal) float64

// governing routes each role to the measurement that opens and closes its
// notes. New roles are added here.
var governing = map[Role]SignalSelector{
	RoleBackground: func(s analysis.FrameSignal) float64 { return s.ColorDelta },
	RoleMedium:     func(s analysis.FrameSignal) float64 { return s.MotionMagnitude },
	RoleDetail:     func(s analysis.FrameSignal) float64 { return s.IntensitySpike },
}

// Governing returns the governing signal selector of a role.
func Governing(r Role) (SignalSelector, error) {
	sel, ok := governing[r]
	if !ok {
		return nil, fmt.Errorf("no governing signal for %v", r)
	}
	return sel, nil
}

// PitchSource names the secondary measurement that chooses the scale degree.
type PitchSource string

const (
	PitchHue       PitchSource = "hue"
	PitchDirection PitchSource = "direction"
	PitchLuminance PitchSource = "luminance"
)

// pitchSources normalize a secondary measurement into [0, 1).
var pitchSources = map[PitchSource]SignalSelector{
	PitchHue: func(s analysis.FrameSignal) float64 { return s.Hue / 360 },
	PitchDirection: func(s analysis.FrameSignal) float64 {
		if !s.HasDirection {
			return 0
		}
		return s.MotionDirection / (2 * math.Pi)
	},
	PitchLuminance: func(s analysis.FrameSignal) float64 { return s.Luminance / 256 },
}

// Validate reports whether p names a known source.
func (p PitchSource) Validate() error {
	if _, ok := pitchSources[p]; !ok {
		return fmt.Errorf("unknown pitch source %q", string(p))
	}
	return nil
}

// Normalized returns the source value of s in [0, 1).
func (p PitchSource) Normalized(s analysis.FrameSignal) float64 {
	sel, ok := pitchSources[p]
	if !ok {
		return 0
	}
	x := sel(s)
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x >= 1 {
		return math.Nextafter(1, 0)
	}
	return x
}

// HueModulation maps the hue change between two onsets onto a mod wheel
// value. The distance is taken the short way round, so 180 degrees is 127.
func HueModulation(from, to float64) uint8 {
	d := math.Mod(math.Abs(to-from), 360)
	if d > 180 {
		d = 360 - d
	}
	if math.IsNaN(d) {
		return 0
	}
	return uint8(math.Min(d/180*127, 127))
}
