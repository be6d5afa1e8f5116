package analysis_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"vid2mid/analysis"
	"vid2mid/vision"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 255
	}
	return img
}

func testConfig() analysis.Config {
	return analysis.Config{
		ROI:                  vision.ROI{W: 32, H: 32},
		ColorChangeThreshold: 15,
		MotionNoiseFloor:     0.5,
		SpikeFloor:           2,
		BaselineWindow:       3,
		Flow:                 vision.FlowParams{Block: 8, Search: 2},
	}
}

func TestFirstFrameHasNoHistory(t *testing.T) {
	sig, st, err := analysis.Extract(solid(32, 32, color.RGBA{R: 200}), 0, analysis.State{}, testConfig())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if sig.MotionMagnitude != 0 || sig.HasDirection || sig.ColorDelta != 0 || sig.IntensitySpike != 0 {
		t.Fatalf("first frame reported change: %v", sig)
	}
	if !st.Primed() {
		t.Fatalf("state not primed after first frame")
	}
	if math.Abs(sig.Luminance-0.299*200) > 0.01 {
		t.Fatalf("luminance: got %v", sig.Luminance)
	}
}

func TestColorDeltaThreshold(t *testing.T) {
	cfg := testConfig()
	_, st, _ := analysis.Extract(solid(32, 32, color.RGBA{R: 100, G: 100, B: 100}), 0, analysis.State{}, cfg)

	sig, st, err := analysis.Extract(solid(32, 32, color.RGBA{R: 110, G: 100, B: 100}), 1, st, cfg)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if sig.ColorDelta != 0 {
		t.Fatalf("delta of 10 should be clamped, got %v", sig.ColorDelta)
	}

	sig, _, _ = analysis.Extract(solid(32, 32, color.RGBA{R: 110, G: 130, B: 100}), 2, st, cfg)
	if math.Abs(sig.ColorDelta-30) > 0.01 {
		t.Fatalf("got color delta %v, expected 30", sig.ColorDelta)
	}
}

func TestSpikeIsPositiveOnly(t *testing.T) {
	cfg := testConfig()
	grey := func(v uint8) *image.RGBA { return solid(32, 32, color.RGBA{R: v, G: v, B: v}) }

	var st analysis.State
	for i, v := range []uint8{100, 100, 100} {
		_, st, _ = analysis.Extract(grey(v), i, st, cfg)
	}

	up, _, _ := analysis.Extract(grey(150), 3, st, cfg)
	if math.Abs(up.IntensitySpike-50) > 0.01 {
		t.Fatalf("got spike %v, expected 50", up.IntensitySpike)
	}
	down, _, _ := analysis.Extract(grey(40), 3, st, cfg)
	if down.IntensitySpike != 0 {
		t.Fatalf("falling luminance reported spike %v", down.IntensitySpike)
	}
	small, _, _ := analysis.Extract(grey(101), 3, st, cfg)
	if small.IntensitySpike != 0 {
		t.Fatalf("rise below floor reported spike %v", small.IntensitySpike)
	}
}

func TestBaselineWindowSlides(t *testing.T) {
	cfg := testConfig()
	cfg.BaselineWindow = 2
	grey := func(v uint8) *image.RGBA { return solid(32, 32, color.RGBA{R: v, G: v, B: v}) }

	var st analysis.State
	for i, v := range []uint8{0, 100, 100} {
		_, st, _ = analysis.Extract(grey(v), i, st, cfg)
	}
	// window holds the last two frames only, so the 0 has dropped out
	sig, _, _ := analysis.Extract(grey(110), 3, st, cfg)
	if math.Abs(sig.IntensitySpike-10) > 0.01 {
		t.Fatalf("got spike %v, expected 10", sig.IntensitySpike)
	}
}

func TestStateIsNotMutated(t *testing.T) {
	cfg := testConfig()
	_, st, _ := analysis.Extract(solid(32, 32, color.RGBA{G: 50}), 0, analysis.State{}, cfg)

	a, _, _ := analysis.Extract(solid(32, 32, color.RGBA{G: 200}), 1, st, cfg)
	_, _, _ = analysis.Extract(solid(32, 32, color.RGBA{B: 255}), 1, st, cfg)
	b, _, _ := analysis.Extract(solid(32, 32, color.RGBA{G: 200}), 1, st, cfg)
	if a != b {
		t.Fatalf("reusing a state gave different signals: %v vs %v", a, b)
	}
}

func TestExtractRejectsSmallFrame(t *testing.T) {
	_, _, err := analysis.Extract(solid(16, 16, color.RGBA{}), 0, analysis.State{}, testConfig())
	if err == nil {
		t.Fatalf("roi larger than the frame was accepted")
	}
}

func TestExtractorSkipKeepsReference(t *testing.T) {
	e := analysis.NewExtractor(testConfig())
	if _, err := e.Feed(solid(32, 32, color.RGBA{R: 100})); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if idx := e.Skip(); idx != 1 {
		t.Fatalf("skipped index %d, expected 1", idx)
	}
	sig, err := e.Feed(solid(32, 32, color.RGBA{R: 100}))
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if sig.FrameIndex != 2 {
		t.Fatalf("frame index %d after gap, expected 2", sig.FrameIndex)
	}
	if sig.ColorDelta != 0 {
		t.Fatalf("gap changed the reference frame: %v", sig)
	}
	if e.Gaps() != 1 || e.Frames() != 3 {
		t.Fatalf("got gaps=%d frames=%d, expected 1 and 3", e.Gaps(), e.Frames())
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	if err := cfg.Validate(image.Pt(32, 32)); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	bad := cfg
	bad.BaselineWindow = 0
	if bad.Validate(image.Pt(32, 32)) == nil {
		t.Fatalf("zero baseline window accepted")
	}
	bad = cfg
	bad.ROI = vision.ROI{X: 8, W: 32, H: 32}
	if bad.Validate(image.Pt(32, 32)) == nil {
		t.Fatalf("roi outside frame accepted")
	}
}
