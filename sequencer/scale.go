package sequencer

import (
	"fmt"
	"math"
	"sort"
)

// Scale is an ascending list of semitone offsets from a root
type Scale []int

// Named scales - intervals from root (semitones)
var scales = map[string]Scale{
	"chromatic":         {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	"major":             {0, 2, 4, 5, 7, 9, 11, 12},
	"minor":             {0, 2, 3, 5, 7, 8, 10, 12},
	"minor7":            {0, 3, 7, 10},
	"pentatonic":        {0, 2, 4, 7, 9},
	"dorian":            {0, 2, 3, 5, 7, 9, 10, 12},
	"phrygian":          {0, 1, 3, 5, 7, 8, 10, 12},
	"lydian":            {0, 2, 4, 6, 7, 9, 11, 12},
	"mixolydian":        {0, 2, 4, 5, 7, 9, 10, 12},
	"locrian":           {0, 1, 3, 5, 6, 8, 10, 12},
	"harmonic-minor":    {0, 2, 3, 5, 7, 8, 11, 12},
	"melodic-minor":     {0, 2, 3, 5, 7, 9, 11, 12},
	"blues":             {0, 3, 5, 6, 7, 10, 12, 15},
	"whole-tone":        {0, 2, 4, 6, 8, 10, 12},
	"dim-half-whole":    {0, 1, 3, 4, 6, 7, 9, 10},
	"dim-whole-half":    {0, 2, 3, 5, 6, 8, 9, 11},
	"hungarian-minor":   {0, 2, 3, 6, 7, 8, 11, 12},
	"double-harmonic":   {0, 1, 4, 5, 7, 8, 11, 12},
	"phrygian-dominant": {0, 1, 4, 5, 7, 8, 10, 12},
	"hirajoshi":         {0, 2, 3, 7, 8, 12, 14, 15},
	"in-sen":            {0, 1, 5, 7, 10, 12, 13, 17},
	"yo":                {0, 2, 4, 7, 9, 12, 14, 16},
	"bhairavi":          {0, 1, 3, 5, 7, 8, 10, 12},
}

// ScaleByName returns a copy of a named scale.
func ScaleByName(name string) (Scale, bool) {
	s, ok := scales[name]
	if !ok {
		return nil, false
	}
	return append(Scale(nil), s...), true
}

// ScaleNames lists the named scales alphabetically.
func ScaleNames() []string {
	names := make([]string, 0, len(scales))
	for name := range scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the scale is non-empty and strictly ascending within
// the MIDI note span.
func (s Scale) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("scale is empty")
	}
	for i, d := range s {
		if d < 0 || d > 127 {
			return fmt.Errorf("scale degree %d out of range", d)
		}
		if i > 0 && d <= s[i-1] {
			return fmt.Errorf("scale %v is not strictly ascending", []int(s))
		}
	}
	return nil
}

// Nearest returns the degree closest to target by absolute semitone
// distance. Ties go to the lower degree.
func (s Scale) Nearest(target float64) int {
	best := s[0]
	bestDist := math.Abs(target - float64(best))
	for _, d := range s[1:] {
		// ascending, so an equal distance is always the higher degree
		if dist := math.Abs(target - float64(d)); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// Degree maps x in [0, 1) linearly over the span of the scale and returns
// the nearest degree.
func (s Scale) Degree(x float64) int {
	lo, hi := s[0], s[len(s)-1]
	return s.Nearest(float64(lo) + x*float64(hi-lo))
}

// NoteRange is an inclusive pitch window.
type NoteRange struct {
	Low  int
	High int
}

func (r NoteRange) Validate() error {
	if r.Low < 0 || r.High > 127 || r.Low > r.High {
		return fmt.Errorf("note range [%d, %d] invalid", r.Low, r.High)
	}
	return nil
}

// Fold moves pitch by whole octaves into the range, clamping when no octave
// of it fits.
func (r NoteRange) Fold(pitch int) int {
	for pitch < r.Low {
		pitch += 12
	}
	for pitch > r.High {
		pitch -= 12
	}
	if pitch < r.Low {
		pitch = r.Low
	}
	return pitch
}

// Pitch quantizes x in [0, 1) to a MIDI note: scale degree plus base, folded
// into rng when set, clamped to 0-127.
func Pitch(x float64, scale Scale, base int, rng *NoteRange) uint8 {
	p := base + scale.Degree(x)
	if rng != nil {
		p = rng.Fold(p)
	}
	return uint8(clampInt(p, 0, 127))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
