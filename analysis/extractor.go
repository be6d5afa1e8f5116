package analysis

import (
	"fmt"
	"image"

	"vid2mid/debug"
	"vid2mid/vision"
)

// Config holds the read-only extraction settings.
type Config struct {
	ROI                  vision.ROI
	Blur                 int     // Gaussian kernel size, <= 1 disables smoothing
	AnalysisWidth        int     // downscale the ROI to this width, 0 keeps it
	ColorChangeThreshold float64 // color deltas below this are reported as 0
	MotionNoiseFloor     float64 // flow vectors shorter than this are ignored
	SpikeFloor           float64 // luma rises must exceed this to count
	BaselineWindow       int     // frames in the trailing luma average
	Flow                 vision.FlowParams
}

// Validate checks the settings against the frame size.
func (c Config) Validate(frame image.Point) error {
	if err := c.ROI.Validate(frame); err != nil {
		return err
	}
	if c.Blur < 0 {
		return fmt.Errorf("blur %d: must not be negative", c.Blur)
	}
	if c.AnalysisWidth < 0 {
		return fmt.Errorf("analysis width %d: must not be negative", c.AnalysisWidth)
	}
	if c.ColorChangeThreshold < 0 || c.MotionNoiseFloor < 0 || c.SpikeFloor < 0 {
		return fmt.Errorf("thresholds must not be negative")
	}
	if c.BaselineWindow < 1 {
		return fmt.Errorf("baseline window %d: must be at least 1", c.BaselineWindow)
	}
	if c.Flow.Block < 1 || c.Flow.Search < 0 {
		return fmt.Errorf("flow block %d / search %d: invalid", c.Flow.Block, c.Flow.Search)
	}
	return nil
}

// State is the trailing context needed to measure the next frame. The zero
// value is the state before the first frame. A State is never mutated by
// Extract, so older states stay valid.
type State struct {
	prev     *vision.Planes
	prevMean [3]float32
	baseline []float64 // previous luma values, oldest first
}

// Primed reports whether a previous frame is available.
func (s State) Primed() bool {
	return s.prev != nil
}

// Extract measures frame number index against the previous state and returns
// the signal together with the state for the next frame.
func Extract(frame image.Image, index int, st State, cfg Config) (FrameSignal, State, error) {
	size := frame.Bounds().Size()
	if err := cfg.ROI.Validate(size); err != nil {
		return FrameSignal{}, st, fmt.Errorf("frame %d: %w", index, err)
	}
	cur := vision.Prepare(frame, cfg.ROI, vision.Options{Blur: cfg.Blur, Width: cfg.AnalysisWidth})
	mean := cur.MeanColor()
	luma := cur.MeanLuma()

	sig := FrameSignal{
		FrameIndex: index,
		Hue:        vision.Hue(mean),
		Luminance:  luma,
	}

	if st.Primed() {
		flow := vision.BlockFlow(st.prev, cur, cfg.Flow)
		sig.MotionMagnitude, sig.MotionDirection, sig.HasDirection = vision.Summarize(flow, cfg.MotionNoiseFloor)

		if d := vision.ColorDistance(mean, st.prevMean); d >= cfg.ColorChangeThreshold {
			sig.ColorDelta = d
		}
	}

	if len(st.baseline) > 0 {
		var sum float64
		for _, v := range st.baseline {
			sum += v
		}
		if rise := luma - sum/float64(len(st.baseline)); rise > cfg.SpikeFloor {
			sig.IntensitySpike = rise
		}
	}

	window := cfg.BaselineWindow
	if window < 1 {
		window = 1
	}
	start := 0
	if len(st.baseline) >= window {
		start = len(st.baseline) - window + 1
	}
	next := State{
		prev:     cur,
		prevMean: mean,
		baseline: append(append(make([]float64, 0, window), st.baseline[start:]...), luma),
	}
	return sig, next, nil
}

// Extractor runs Extract over a frame sequence, assigning frame indices and
// counting decode gaps. It must be fed in frame order from one goroutine.
type Extractor struct {
	cfg   Config
	state State
	next  int
	gaps  int
}

func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Feed measures the next frame.
func (e *Extractor) Feed(frame image.Image) (FrameSignal, error) {
	index := e.next
	sig, st, err := Extract(frame, index, e.state, e.cfg)
	if err != nil {
		return FrameSignal{}, err
	}
	e.state = st
	e.next++
	debug.LogEvery(30, "extract", "%v", sig)
	return sig, nil
}

// Skip records a frame that could not be decoded. Its index is consumed, no
// signal is produced, and the previous frame stays the reference.
func (e *Extractor) Skip() int {
	index := e.next
	e.next++
	e.gaps++
	debug.Log("extract", "frame %d dropped (decode gap %d)", index, e.gaps)
	return index
}

// Gaps returns the number of skipped frames so far.
func (e *Extractor) Gaps() int {
	return e.gaps
}

// Frames returns the number of frame indices consumed, decoded or not.
func (e *Extractor) Frames() int {
	return e.next
}
