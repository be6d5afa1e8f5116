package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"vid2mid/pipeline"
	"vid2mid/theme"
)

func TestProgressFillsLanes(t *testing.T) {
	m := NewModel(theme.New(nil), "clip.mp4", []string{"background", "medium", "detail"}, 10, nil, nil)

	m.advance(pipeline.Progress{Frame: 5, Total: 100, Notes: []int{1, 0, 0}})
	m.advance(pipeline.Progress{Frame: 25, Total: 100, Notes: []int{1, 3, 0}})

	if got := m.lanes[0].Slots; len(got) != 3 || got[0] != 1 || got[2] != 0 {
		t.Fatalf("background slots %v", got)
	}
	if got := m.lanes[1].Slots; got[2] != 3 || m.lanes[1].Notes != 3 {
		t.Fatalf("medium slots %v notes %d", got, m.lanes[1].Notes)
	}
	if !strings.Contains(m.View(), "25/100 frames") {
		t.Fatalf("view missing frame count:\n%s", m.View())
	}
}

func TestLanesScroll(t *testing.T) {
	m := NewModel(theme.New(nil), "x", []string{"background"}, 1, nil, nil)
	m.advance(pipeline.Progress{Frame: 500, Notes: []int{0}})
	if len(m.lanes[0].Slots) != laneWidth {
		t.Fatalf("lane has %d slots, expected %d", len(m.lanes[0].Slots), laneWidth)
	}
}

func TestQuitCancelsRun(t *testing.T) {
	cancelled := false
	m := NewModel(theme.New(nil), "x", nil, 1, nil, func() { cancelled = true })
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !cancelled || cmd == nil || !next.(Model).Aborted() {
		t.Fatalf("quit did not cancel the run")
	}
}

func TestDoneQuits(t *testing.T) {
	m := NewModel(theme.New(nil), "x", []string{"background"}, 1, nil, nil)
	next, cmd := m.Update(DoneMsg{Err: errors.New("boom")})
	if cmd == nil || next.(Model).Err == nil || next.(Model).Aborted() {
		t.Fatalf("done message not handled")
	}
}
