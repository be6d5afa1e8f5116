package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Progress bar
	BarFull  rune // █ done
	BarEmpty rune // ░ remaining

	// Track lanes
	LaneNote rune // ● notes started in this slot
	LaneRest rune // · silence
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '█',
			BarEmpty: '░',

			LaneNote: '●',
			LaneRest: '·',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// track colors, background to detail
var trackRoles = []float64{0.3, 0.6, 0.9}

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Track returns the lane color of track i.
func (t *Theme) Track(i int) lipgloss.Color {
	return rgbToLipgloss(t.TrackRGB(i))
}

// TrackRGB returns the raw lane color of track i.
func (t *Theme) TrackRGB(i int) RGB {
	if i < 0 || i >= len(trackRoles) {
		return t.Palette.Lookup(RoleFG)
	}
	return t.Palette.Lookup(trackRoles[i])
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// RGBA returns the color at norm for image drawing.
func (t *Theme) RGBA(norm float64) color.RGBA {
	c := t.Palette.Lookup(norm)
	return color.RGBA{c[0], c[1], c[2], 255}
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
