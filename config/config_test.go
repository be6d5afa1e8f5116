package config_test

import (
	"errors"
	"image"
	"path/filepath"
	"reflect"
	"testing"

	"vid2mid/config"
	"vid2mid/sequencer"
)

var frame = image.Pt(640, 480)

func resolve(t *testing.T, c *config.Config) *config.Resolved {
	t.Helper()
	r, err := c.Resolve(frame, 30)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return r
}

func parse(t *testing.T, doc, ext string) *config.Config {
	t.Helper()
	c, err := config.Parse([]byte(doc), ext)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return c
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ce *config.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, expected a ConfigError", err)
	}
	return ce.Field
}

func TestDefaultsResolveToRoleDefaults(t *testing.T) {
	r := resolve(t, config.DefaultConfig())
	if len(r.Tracks) != 3 {
		t.Fatalf("got %d tracks", len(r.Tracks))
	}
	for i, role := range sequencer.Roles {
		want, _ := sequencer.DefaultTrack(role)
		if !reflect.DeepEqual(r.Tracks[i], want) {
			t.Fatalf("%v resolved to %+v, expected %+v", role, r.Tracks[i], want)
		}
	}
	if r.Analysis.ROI.W != 640 || r.Analysis.ROI.H != 480 {
		t.Fatalf("empty roi should cover the frame, got %v", r.Analysis.ROI)
	}
	if r.Timing.FPS != 30 || r.Timing.BPM != 120 || r.Timing.TicksPerBeat != 480 {
		t.Fatalf("unexpected timing %+v", r.Timing)
	}
}

func TestEmptyDocumentIsDefaults(t *testing.T) {
	a := resolve(t, parse(t, "", ".yaml"))
	b := resolve(t, config.DefaultConfig())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("empty document differs from defaults")
	}
}

func TestTrackFieldOverride(t *testing.T) {
	c := parse(t, "tracks:\n  medium:\n    program: 20\n    velocity_curve:\n      max: 100\n", ".yaml")
	r := resolve(t, c)
	med := r.Tracks[sequencer.RoleMedium]
	if med.Program != 20 || med.Velocity.Max != 100 {
		t.Fatalf("override not applied: %+v", med)
	}
	def, _ := sequencer.DefaultTrack(sequencer.RoleMedium)
	if med.Channel != def.Channel || med.Velocity.Min != def.Velocity.Min || !reflect.DeepEqual(med.Scale, def.Scale) {
		t.Fatalf("untouched fields changed: %+v", med)
	}
}

func TestModulationFlag(t *testing.T) {
	r := resolve(t, config.DefaultConfig())
	if !r.Tracks[sequencer.RoleBackground].Modulation || r.Tracks[sequencer.RoleMedium].Modulation {
		t.Fatalf("only background modulates by default")
	}
	c := parse(t, "tracks:\n  background:\n    modulation: false\n  detail:\n    modulation: true\n", ".yaml")
	r = resolve(t, c)
	if r.Tracks[sequencer.RoleBackground].Modulation || !r.Tracks[sequencer.RoleDetail].Modulation {
		t.Fatalf("modulation override not applied")
	}
}

func TestDetailsAlias(t *testing.T) {
	r := resolve(t, parse(t, "tracks:\n  details:\n    channel: 9\n", ".yaml"))
	if r.Tracks[sequencer.RoleDetail].Channel != 9 {
		t.Fatalf("details section ignored: %+v", r.Tracks[sequencer.RoleDetail])
	}

	c := parse(t, "tracks:\n  detail:\n    channel: 9\n  details:\n    channel: 10\n", ".yaml")
	if _, err := c.Resolve(frame, 30); err == nil {
		t.Fatalf("detail configured twice accepted")
	}
}

func TestScaleName(t *testing.T) {
	r := resolve(t, parse(t, "tracks:\n  background:\n    scale_name: pentatonic\n", ".yaml"))
	want, _ := sequencer.ScaleByName("pentatonic")
	if !reflect.DeepEqual(r.Tracks[0].Scale, want) {
		t.Fatalf("got scale %v, expected %v", r.Tracks[0].Scale, want)
	}

	_, err := parse(t, "tracks:\n  detail:\n    scale_name: nope\n", ".yaml").Resolve(frame, 30)
	if f := fieldOf(t, err); f != "tracks.detail.scale_name" {
		t.Fatalf("error on field %q", f)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	_, err := config.Parse([]byte("global:\n  blurr: 3\n"), ".yaml")
	if f := fieldOf(t, err); f != "file" {
		t.Fatalf("error on field %q", f)
	}
}

func TestParseJSON(t *testing.T) {
	c := parse(t, `{"timing": {"bpm": 90, "ticks_per_beat": 960, "fps": 24}}`, ".json")
	r := resolve(t, c)
	if r.Timing.BPM != 90 || r.Timing.TicksPerBeat != 960 {
		t.Fatalf("unexpected timing %+v", r.Timing)
	}
	if r.Timing.FPS != 24 {
		t.Fatalf("configured fps should override the source, got %v", r.Timing.FPS)
	}
}

func TestResolveErrors(t *testing.T) {
	for _, tc := range []struct {
		doc   string
		field string
	}{
		{"global:\n  roi: [0, 0, 1000, 10]\n", "global.roi"},
		{"global:\n  roi: [0, 0, 10]\n", "global.roi"},
		{"global:\n  baseline_window: 0\n", "global"},
		{"timing:\n  bpm: 0\n", "timing"},
		{"tracks:\n  background:\n    onset_threshold: 5\n", "tracks.background.onset_threshold"},
		{"tracks:\n  medium:\n    channel: 16\n", "tracks.medium.channel"},
		{"tracks:\n  medium:\n    note_range: [60]\n", "tracks.medium.note_range"},
		{"tracks:\n  detail:\n    pitch_source: loudness\n", "tracks.detail.pitch_source"},
		{"tracks:\n  detail:\n    velocity_curve:\n      min: 0\n", "tracks.detail.velocity_curve"},
		{"tracks:\n  percussion: {}\n", "tracks.percussion"},
	} {
		_, err := parse(t, tc.doc, ".yaml").Resolve(frame, 30)
		if f := fieldOf(t, err); f != tc.field {
			t.Fatalf("%q: error on field %q, expected %q (%v)", tc.doc, f, tc.field, err)
		}
	}
}

func TestChannelCollision(t *testing.T) {
	_, err := parse(t, "tracks:\n  medium:\n    channel: 0\n", ".yaml").Resolve(frame, 30)
	if !errors.Is(err, sequencer.ErrChannelConflict) {
		t.Fatalf("got %v, expected ErrChannelConflict", err)
	}
}

func TestPresets(t *testing.T) {
	c := config.DefaultConfig()
	if err := c.ApplyPreset("electronic"); err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	r := resolve(t, c)
	if r.Tracks[0].Program != 81 || !reflect.DeepEqual(r.Tracks[0].Scale, sequencer.Scale{0, 4, 7, 11}) {
		t.Fatalf("background not from preset: %+v", r.Tracks[0])
	}
	if r.Tracks[2].Program != 119 || r.Tracks[2].Channel != 2 {
		t.Fatalf("detail not from preset: %+v", r.Tracks[2])
	}

	// a preset only touches programs and scales
	c = parse(t, "tracks:\n  details:\n    channel: 7\n", ".yaml")
	if err := c.ApplyPreset("cinematic"); err != nil {
		t.Fatalf("ApplyPreset failed: %v", err)
	}
	r = resolve(t, c)
	if r.Tracks[2].Channel != 7 || r.Tracks[2].Program != 127 {
		t.Fatalf("preset lost the user section: %+v", r.Tracks[2])
	}

	if err := c.ApplyPreset("baroque"); err == nil {
		t.Fatalf("unknown preset accepted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"vid2mid.yaml", "vid2mid.json"} {
		c := config.DefaultConfig()
		c.Global.ROI = []int{10, 20, 300, 200}
		c.Timing.BPM = 96
		if err := c.ApplyPreset("electronic"); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "nested", name)
		if err := c.Save(path); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		loaded, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if !reflect.DeepEqual(resolve(t, loaded), resolve(t, c)) {
			t.Fatalf("%s: loaded config resolves differently", name)
		}
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing explicit config accepted")
	}
}
