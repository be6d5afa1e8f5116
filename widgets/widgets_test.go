package widgets_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"vid2mid/theme"
	"vid2mid/widgets"
)

func TestRenderBarWidth(t *testing.T) {
	th := theme.New(nil)
	for _, frac := range []float64{-1, 0, 0.3, 1, 2} {
		bar := widgets.RenderBar(th, 20, frac)
		if w := lipgloss.Width(bar); w != 20 {
			t.Fatalf("frac %v: bar is %d cells wide", frac, w)
		}
	}
	if strings.ContainsRune(widgets.RenderBar(th, 10, 1), th.Symbols.BarEmpty) {
		t.Fatalf("full bar has empty cells")
	}
	if widgets.RenderBar(th, 0, 0.5) != "" {
		t.Fatalf("zero width bar not empty")
	}
}

func TestRenderLane(t *testing.T) {
	th := theme.New(nil)
	out := widgets.RenderLane(th, 1, widgets.Lane{Name: "medium", Notes: 12, Slots: []int{0, 2, 0, 1}})
	if !strings.Contains(out, "medium") || !strings.Contains(out, "12") {
		t.Fatalf("lane missing name or count: %q", out)
	}
	if strings.Count(out, string(th.Symbols.LaneNote)) != 2 || strings.Count(out, string(th.Symbols.LaneRest)) != 2 {
		t.Fatalf("unexpected cells: %q", out)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := widgets.RenderKeyHelp([]widgets.KeySection{{Title: "Run", Keys: []widgets.KeyBinding{{Key: "q", Desc: "abort"}}}})
	if out != "Run\n  q            abort" {
		t.Fatalf("got %q", out)
	}
}
