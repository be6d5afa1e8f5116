package sequencer_test

import (
	"bytes"
	"go/format"
	"os"
	"testing"

	"vid2mid/analysis"
	"vid2mid/sequencer"
)

func TestNearestTiesGoLower(t *testing.T) {
	s := sequencer.Scale{0, 4, 7}
	cases := []struct {
		target float64
		want   int
	}{
		{0, 0},
		{1.9, 0},
		{2, 0}, // equidistant from 0 and 4
		{2.1, 4},
		{5.5, 4}, // equidistant from 4 and 7
		{5.6, 7},
		{40, 7},
	}
	for _, c := range cases {
		if got := s.Nearest(c.target); got != c.want {
			t.Fatalf("Nearest(%v) = %d, expected %d", c.target, got, c.want)
		}
	}
}

func TestPitchSpansScale(t *testing.T) {
	s := sequencer.Scale{0, 2, 4, 7, 9}
	if p := sequencer.Pitch(0, s, 60, nil); p != 60 {
		t.Fatalf("x=0 gave %d", p)
	}
	if p := sequencer.Pitch(0.999, s, 60, nil); p != 69 {
		t.Fatalf("x=0.999 gave %d", p)
	}
	if p := sequencer.Pitch(0.5, s, 60, nil); p != 64 {
		t.Fatalf("x=0.5 gave %d", p)
	}
}

func TestPitchFoldsIntoRange(t *testing.T) {
	chromatic, _ := sequencer.ScaleByName("chromatic")
	rng := &sequencer.NoteRange{Low: 84, High: 96}
	for _, base := range []int{36, 60, 100, 120} {
		for _, x := range []float64{0, 0.3, 0.7, 0.99} {
			p := int(sequencer.Pitch(x, chromatic, base, rng))
			if p < 84 || p > 96 {
				t.Fatalf("base %d x %v: pitch %d outside range", base, x, p)
			}
			if (p-base-chromatic.Degree(x))%12 != 0 {
				t.Fatalf("base %d x %v: pitch %d not an octave shift", base, x, p)
			}
		}
	}
	narrow := sequencer.NoteRange{Low: 61, High: 62}
	if p := narrow.Fold(60); p != 61 {
		t.Fatalf("narrow fold gave %d", p)
	}
}

func TestPitchClampsToMIDI(t *testing.T) {
	if p := sequencer.Pitch(0.99, sequencer.Scale{0, 12}, 120, nil); p != 127 {
		t.Fatalf("got %d, expected 127", p)
	}
}

func TestScaleValidate(t *testing.T) {
	for _, s := range []sequencer.Scale{nil, {0, 0}, {3, 1}, {-1, 2}} {
		if s.Validate() == nil {
			t.Fatalf("scale %v accepted", s)
		}
	}
	for _, name := range sequencer.ScaleNames() {
		s, ok := sequencer.ScaleByName(name)
		if !ok || s.Validate() != nil {
			t.Fatalf("named scale %q invalid", name)
		}
	}
}

func TestVelocityCurvesAreMonotonic(t *testing.T) {
	for _, kind := range []sequencer.CurveKind{sequencer.CurveLinear, sequencer.CurveExponential, sequencer.CurveSqrt, sequencer.CurveLog} {
		c := sequencer.VelocityCurve{Kind: kind, Min: 1, Max: 127}
		if err := c.Validate(); err != nil {
			t.Fatalf("%v: %v", kind, err)
		}
		prev := uint8(0)
		for i := 0; i <= 100; i++ {
			v := c.Velocity(float64(i) / 100)
			if v < prev {
				t.Fatalf("%v not monotonic at %d", kind, i)
			}
			prev = v
		}
		if c.Velocity(0) != 1 || c.Velocity(1) != 127 || c.Velocity(5) != 127 || c.Velocity(-1) != 1 {
			t.Fatalf("%v endpoints wrong", kind)
		}
	}
	if (sequencer.VelocityCurve{Kind: sequencer.CurveLinear, Min: 0, Max: 100}).Validate() == nil {
		t.Fatalf("velocity 0 accepted")
	}
}

func TestPitchSources(t *testing.T) {
	sig := analysis.FrameSignal{Hue: 180, Luminance: 128}
	if x := sequencer.PitchHue.Normalized(sig); x != 0.5 {
		t.Fatalf("hue normalized to %v", x)
	}
	if x := sequencer.PitchLuminance.Normalized(sig); x != 0.5 {
		t.Fatalf("luminance normalized to %v", x)
	}
	if x := sequencer.PitchDirection.Normalized(sig); x != 0 {
		t.Fatalf("missing direction normalized to %v", x)
	}
	if x := sequencer.PitchLuminance.Normalized(analysis.FrameSignal{Luminance: 900}); x >= 1 {
		t.Fatalf("normalized value %v not below 1", x)
	}
	if sequencer.PitchSource("size").Validate() == nil {
		t.Fatalf("unknown pitch source accepted")
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]sequencer.Role{
		"background": sequencer.RoleBackground,
		"Medium":     sequencer.RoleMedium,
		"details":    sequencer.RoleDetail,
		"detail":     sequencer.RoleDetail,
	} {
		got, err := sequencer.ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := sequencer.ParseRole("lead"); err == nil {
		t.Fatalf("unknown role accepted")
	}
}

func TestDefaultTracksAreValid(t *testing.T) {
	var cfgs []sequencer.TrackConfig
	for _, role := range sequencer.Roles {
		cfg, ok := sequencer.DefaultTrack(role)
		if !ok {
			t.Fatalf("no default for %v", role)
		}
		if field, err := cfg.Validate(); err != nil {
			t.Fatalf("default %v invalid at %s: %v", role, field, err)
		}
		cfgs = append(cfgs, cfg)
	}
	if err := sequencer.CheckChannels(cfgs); err != nil {
		t.Fatalf("default channels collide: %v", err)
	}

	a, _ := sequencer.DefaultTrack(sequencer.RoleDetail)
	a.Scale[0] = 99
	a.NoteRange.Low = 0
	b, _ := sequencer.DefaultTrack(sequencer.RoleDetail)
	if b.Scale[0] != 0 || b.NoteRange.Low != 84 {
		t.Fatalf("DefaultTrack returned shared state")
	}
}

func TestScaleTableIsFormatted(t *testing.T) {
	src, err := os.ReadFile("scale.go")
	if err != nil {
		t.Fatal(err)
	}
	out, err := format.Source(src)
	if err != nil {
		t.Fatalf("scale.go does not parse: %v", err)
	}
	if !bytes.Equal(src, out) {
		t.Fatalf("scale.go is not gofmt formatted")
	}
}
