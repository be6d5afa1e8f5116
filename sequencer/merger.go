package sequencer

import (
	"fmt"
	"math"
	"sort"

	"vid2mid/debug"
	"vid2mid/midi"
)

// Timing converts frame indices into MIDI ticks.
type Timing struct {
	FPS          float64
	TicksPerBeat int
	BPM          float64
}

func (t Timing) Validate() error {
	if t.FPS <= 0 || math.IsInf(t.FPS, 0) || math.IsNaN(t.FPS) {
		return fmt.Errorf("fps %v must be positive", t.FPS)
	}
	if t.TicksPerBeat <= 0 || t.TicksPerBeat > 0x7FFF {
		return fmt.Errorf("ticks per beat %d out of range", t.TicksPerBeat)
	}
	if t.BPM <= 0 || math.IsInf(t.BPM, 0) || math.IsNaN(t.BPM) {
		return fmt.Errorf("bpm %v must be positive", t.BPM)
	}
	return nil
}

// FrameToTick rounds half up: frame * tpb * bpm / (60 * fps).
func (t Timing) FrameToTick(frame int) int64 {
	return int64(math.Floor(float64(frame)*float64(t.TicksPerBeat)*t.BPM/(60*t.FPS) + 0.5))
}

// TrackInput is one track handed to the merger.
type TrackInput struct {
	Config TrackConfig
	Notes  NoteStream
}

type mergeTrack struct {
	cfg   TrackConfig
	notes NoteStream

	cc      *midi.Event // mod wheel sent just before on
	on      *midi.Event // next note-on, not yet emitted
	off     *midi.Event // note-off of the last emitted note-on
	nextOff midi.Event  // note-off paired with on

	lastOff int64
	lastEnd int
	started bool
	done    bool
}

// Merger interleaves the note streams of several tracks into one
// tick-ordered event stream. It holds at most one note per track and only
// emits an event once every unfinished track has shown its next one, so a
// slow track can never be overtaken. When tracks are produced on other
// goroutines, feed each through a NoteQueue so no producer waits on it.
//
// Order is tick, then role priority, then note-off before control change
// before note-on.
type Merger struct {
	timing Timing
	tracks []*mergeTrack
	meta   []midi.TrackMeta
}

// NewMerger validates the timing and the channel assignment before any note
// is read.
func NewMerger(inputs []TrackInput, timing Timing) (*Merger, error) {
	if err := timing.Validate(); err != nil {
		return nil, err
	}
	cfgs := make([]TrackConfig, len(inputs))
	for i, in := range inputs {
		cfgs[i] = in.Config
	}
	if err := CheckChannels(cfgs); err != nil {
		return nil, err
	}

	sorted := append([]TrackInput(nil), inputs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Config.Role < sorted[j].Config.Role
	})

	m := &Merger{timing: timing}
	for _, in := range sorted {
		m.tracks = append(m.tracks, &mergeTrack{cfg: in.Config, notes: in.Notes})
		m.meta = append(m.meta, midi.TrackMeta{
			Name:    in.Config.TrackName(),
			Channel: in.Config.Channel,
			Program: in.Config.Program,
		})
	}
	return m, nil
}

// Tracks returns the track tagging in output order.
func (m *Merger) Tracks() []midi.TrackMeta {
	return m.meta
}

// peek returns the next event of track i, pulling a note if needed. nil
// means the track is finished.
func (m *Merger) peek(i int) (*midi.Event, error) {
	t := m.tracks[i]
	if t.off != nil {
		return t.off, nil
	}
	if t.cc != nil {
		return t.cc, nil
	}
	if t.on != nil {
		return t.on, nil
	}
	if t.done {
		return nil, nil
	}

	n, ok, err := t.notes.Next()
	if err != nil {
		return nil, err
	}
	if !ok {
		t.done = true
		return nil, nil
	}
	if n.EndFrame <= n.OnsetFrame {
		return nil, fmt.Errorf("%w: %v note %v is empty", ErrInvariantViolation, t.cfg.Role, n)
	}
	if t.started && n.OnsetFrame < t.lastEnd {
		return nil, fmt.Errorf("%w: %v note %v overlaps the previous one ending at frame %d", ErrInvariantViolation, t.cfg.Role, n, t.lastEnd)
	}
	t.started = true
	t.lastEnd = n.EndFrame

	onTick := m.timing.FrameToTick(n.OnsetFrame)
	if onTick < t.lastOff {
		onTick = t.lastOff
	}
	offTick := m.timing.FrameToTick(n.EndFrame)
	if offTick <= onTick {
		offTick = onTick + 1
	}

	if t.cfg.Modulation {
		t.cc = &midi.Event{Tick: onTick, Type: midi.ControlChange, Channel: n.Channel, Note: midi.ModWheel, Velocity: n.Modulation, Track: i}
	}
	t.on = &midi.Event{Tick: onTick, Type: midi.NoteOn, Channel: n.Channel, Note: n.Pitch, Velocity: n.Velocity, Track: i}
	t.nextOff = midi.Event{Tick: offTick, Type: midi.NoteOff, Channel: n.Channel, Note: n.Pitch, Track: i}
	if t.cc != nil {
		return t.cc, nil
	}
	return t.on, nil
}

// Next returns the next event in global order. ok is false when every track
// is finished.
func (m *Merger) Next() (midi.Event, bool, error) {
	var next *midi.Event
	nextIdx := -1
	for i := range m.tracks {
		evt, err := m.peek(i)
		if err != nil {
			return midi.Event{}, false, err
		}
		// strict <, so lower priority index wins ties
		if evt != nil && (next == nil || evt.Tick < next.Tick) {
			next = evt
			nextIdx = i
		}
	}
	if next == nil {
		return midi.Event{}, false, nil
	}

	evt := *next
	t := m.tracks[nextIdx]
	switch evt.Type {
	case midi.NoteOff:
		t.off = nil
		t.lastOff = evt.Tick
	case midi.ControlChange:
		t.cc = nil
	default:
		t.on = nil
		off := t.nextOff
		t.off = &off
	}
	debug.LogEvery(50, "merge", "%v", evt)
	return evt, true, nil
}

// Merge drains every track into a complete sequence.
func Merge(inputs []TrackInput, timing Timing) (*midi.Sequence, error) {
	m, err := NewMerger(inputs, timing)
	if err != nil {
		return nil, err
	}
	return m.Drain()
}

// Drain collects the remaining events into a sequence.
func (m *Merger) Drain() (*midi.Sequence, error) {
	seq := &midi.Sequence{
		BPM:          m.timing.BPM,
		TicksPerBeat: m.timing.TicksPerBeat,
		Tracks:       m.meta,
	}
	for {
		evt, ok, err := m.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return seq, nil
		}
		seq.Events = append(seq.Events, evt)
	}
}
