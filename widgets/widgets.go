package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vid2mid/theme"
)

// RenderBar renders a progress bar of width cells, frac in [0, 1].
func RenderBar(th *theme.Theme, width int, frac float64) string {
	if width < 1 {
		return ""
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	full := int(frac*float64(width) + 0.5)

	var out strings.Builder
	for i := 0; i < width; i++ {
		if i < full {
			// the filled part runs along the palette
			c := th.Color(float64(i) / float64(width))
			out.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(th.Symbols.BarFull)))
		} else {
			out.WriteString(lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.BarEmpty)))
		}
	}
	return out.String()
}

// Lane is the recent activity of one track, oldest slot first. A slot holds
// the number of notes that started in it.
type Lane struct {
	Name  string
	Notes int
	Slots []int
}

// RenderLane renders a track lane: name, note count and one cell per slot.
func RenderLane(th *theme.Theme, i int, lane Lane) string {
	note := lipgloss.NewStyle().Foreground(th.Track(i))
	rest := lipgloss.NewStyle().Foreground(th.Muted())

	var cells strings.Builder
	for _, n := range lane.Slots {
		if n > 0 {
			cells.WriteString(note.Render(string(th.Symbols.LaneNote)))
		} else {
			cells.WriteString(rest.Render(string(th.Symbols.LaneRest)))
		}
	}
	label := note.Render(fmt.Sprintf("%-10s", lane.Name))
	return fmt.Sprintf("%s %5d  %s", label, lane.Notes, cells.String())
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
