package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vid2mid/pipeline"
	"vid2mid/theme"
	"vid2mid/widgets"
)

const (
	barWidth  = 40
	laneWidth = 48
)

// ProgressMsg carries one pipeline progress update.
type ProgressMsg pipeline.Progress

// DoneMsg ends the run.
type DoneMsg struct {
	Result *pipeline.Result
	Err    error
}

type Model struct {
	Theme    *theme.Theme
	Title    string
	progress <-chan pipeline.Progress
	cancel   context.CancelFunc

	last       pipeline.Progress
	lanes      []widgets.Lane
	slotFrames int // frames per lane slot
	slot       int // slot index of the newest cell

	Result   *pipeline.Result
	Err      error
	quitting bool
	aborted  bool
}

// NewModel shows the progress of a run over tracks. cancel aborts the run.
// slotFrames is the number of frames one lane cell covers.
func NewModel(th *theme.Theme, title string, tracks []string, slotFrames int, progress <-chan pipeline.Progress, cancel context.CancelFunc) Model {
	if slotFrames < 1 {
		slotFrames = 1
	}
	lanes := make([]widgets.Lane, len(tracks))
	for i, name := range tracks {
		lanes[i] = widgets.Lane{Name: name, Slots: []int{0}}
	}
	return Model{
		Theme:      th,
		Title:      title,
		progress:   progress,
		cancel:     cancel,
		lanes:      lanes,
		slotFrames: slotFrames,
	}
}

func ListenForProgress(ch <-chan pipeline.Progress) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg(<-ch)
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForProgress(m.progress)
}

// Aborted reports whether the user quit before the run finished.
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.aborted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case ProgressMsg:
		m.advance(pipeline.Progress(msg))
		return m, ListenForProgress(m.progress)

	case DoneMsg:
		m.Result, m.Err = msg.Result, msg.Err
		if msg.Result != nil {
			for i := range m.lanes {
				if i < len(msg.Result.Tracks) {
					m.lanes[i].Notes = msg.Result.Tracks[i].Notes
				}
			}
		}
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// advance scrolls the lanes to p.Frame and adds the notes merged since the
// previous update to the newest cell.
func (m *Model) advance(p pipeline.Progress) {
	slot := p.Frame / m.slotFrames
	for ; m.slot < slot; m.slot++ {
		for i := range m.lanes {
			m.lanes[i].Slots = append(m.lanes[i].Slots, 0)
			if len(m.lanes[i].Slots) > laneWidth {
				m.lanes[i].Slots = m.lanes[i].Slots[1:]
			}
		}
	}
	for i := range m.lanes {
		if i >= len(p.Notes) {
			break
		}
		delta := p.Notes[i] - m.lanes[i].Notes
		if delta > 0 {
			m.lanes[i].Slots[len(m.lanes[i].Slots)-1] += delta
		}
		m.lanes[i].Notes = p.Notes[i]
	}
	m.last = p
}

func (m Model) View() string {
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	header := headerStyle.Render(fmt.Sprintf("vid2mid  %s", m.Title))

	var status string
	frac := 0.0
	if m.last.Total > 0 {
		frac = float64(m.last.Frame) / float64(m.last.Total)
		status = fmt.Sprintf("%d/%d frames", m.last.Frame, m.last.Total)
	} else {
		status = fmt.Sprintf("%d frames", m.last.Frame)
	}
	if m.Result != nil {
		frac = 1
	}
	if m.last.Gaps > 0 {
		status += warnStyle.Render(fmt.Sprintf("  %d dropped", m.last.Gaps))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderBar(m.Theme, barWidth, frac))
	out.WriteString("  ")
	out.WriteString(status)
	out.WriteString("\n\n")
	for i, lane := range m.lanes {
		out.WriteString(widgets.RenderLane(m.Theme, i, lane))
		out.WriteString("\n")
	}
	if !m.quitting {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render("q:abort"))
	}
	out.WriteString("\n")
	return out.String()
}
