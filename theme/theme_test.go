package theme_test

import (
	"strings"
	"testing"

	"vid2mid/theme"
)

const gpl = `GIMP Palette
Name: two
Columns: 2
# comment
0 0 0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := theme.ParseGPL(strings.NewReader(gpl))
	if err != nil {
		t.Fatalf("ParseGPL failed: %v", err)
	}
	if p.Name != "two" || len(p.Colors) != 2 {
		t.Fatalf("unexpected palette %+v", p)
	}
	if _, err := theme.ParseGPL(strings.NewReader("GIMP Palette\n")); err == nil {
		t.Fatalf("empty palette accepted")
	}
}

func TestLookupEnds(t *testing.T) {
	p, _ := theme.ParseGPL(strings.NewReader(gpl))
	if p.Lookup(-1) != (theme.RGB{0, 0, 0}) || p.Lookup(2) != (theme.RGB{255, 255, 255}) {
		t.Fatalf("ends not clamped")
	}
	mid := p.Lookup(0.5)
	// HCL blend of black and white is a mid grey
	if mid[0] < 80 || mid[0] > 160 || abs(int(mid[0])-int(mid[1])) > 3 || abs(int(mid[1])-int(mid[2])) > 3 {
		t.Fatalf("unexpected midpoint %v", mid)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestThemeTrackColorsDiffer(t *testing.T) {
	th := theme.New(nil)
	if th.Palette.Name != "plasma" {
		t.Fatalf("default palette %q", th.Palette.Name)
	}
	if th.Track(0) == th.Track(1) || th.Track(1) == th.Track(2) {
		t.Fatalf("track colors repeat")
	}
}
