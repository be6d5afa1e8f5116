package sequencer

import (
	"fmt"
	"math"
)

// CurveKind shapes the velocity response.
type CurveKind string

const (
	CurveLinear      CurveKind = "linear"
	CurveExponential CurveKind = "exponential"
	CurveSqrt        CurveKind = "sqrt"
	CurveLog         CurveKind = "log"
)

// VelocityCurve maps a normalized governing signal in [0, 1] onto
// [Min, Max]. Every kind is monotonic.
type VelocityCurve struct {
	Kind CurveKind
	Min  int
	Max  int
}

func (c VelocityCurve) Validate() error {
	switch c.Kind {
	case CurveLinear, CurveExponential, CurveSqrt, CurveLog:
	default:
		return fmt.Errorf("unknown velocity curve %q", string(c.Kind))
	}
	// a note-on with velocity 0 is a note-off
	if c.Min < 1 || c.Max > 127 || c.Min > c.Max {
		return fmt.Errorf("velocity range [%d, %d] invalid", c.Min, c.Max)
	}
	return nil
}

func (c VelocityCurve) shape(n float64) float64 {
	switch c.Kind {
	case CurveExponential:
		return n * n
	case CurveSqrt:
		return math.Sqrt(n)
	case CurveLog:
		return math.Log1p(9*n) / math.Ln10
	default:
		return n
	}
}

// Velocity evaluates the curve. n is clamped into [0, 1].
func (c VelocityCurve) Velocity(n float64) uint8 {
	if math.IsNaN(n) || n < 0 {
		n = 0
	}
	if n > 1 {
		n = 1
	}
	v := float64(c.Min) + c.shape(n)*float64(c.Max-c.Min)
	return uint8(clampInt(int(math.Floor(v+0.5)), 1, 127))
}
