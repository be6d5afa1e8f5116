package sequencer

import (
	"errors"
	"fmt"

	"vid2mid/analysis"
	"vid2mid/debug"
)

// ErrInvariantViolation means the note state machine was driven into an
// impossible transition. Output produced after it is not trustworthy.
var ErrInvariantViolation = errors.New("mapping invariant violated")

func openNote(st TrackState, n Note) (TrackState, error) {
	if st.Phase == Sustaining {
		return st, fmt.Errorf("%w: %v opened a note while %v is open", ErrInvariantViolation, n.Role, st.Open)
	}
	st.Phase = Sustaining
	st.Open = n
	return st, nil
}

func closeNote(st TrackState, end int) (Note, TrackState, error) {
	if st.Phase != Sustaining {
		return Note{}, st, fmt.Errorf("%w: close at frame %d with no open note", ErrInvariantViolation, end)
	}
	n := st.Open
	n.EndFrame = end
	st.Phase = Idle
	st.Open = Note{}
	return n, st, nil
}

// Step advances a track by one frame signal and returns the notes that
// closed on it.
func Step(sig analysis.FrameSignal, cfg TrackConfig, st TrackState) ([]Note, TrackState, error) {
	if st.Started && sig.FrameIndex <= st.LastFrame {
		return nil, st, fmt.Errorf("%w: %v got frame %d after frame %d", ErrInvariantViolation, cfg.Role, sig.FrameIndex, st.LastFrame)
	}
	sel, err := Governing(cfg.Role)
	if err != nil {
		return nil, st, err
	}
	g := sel(sig)
	frame := sig.FrameIndex

	next := st
	next.Started = true
	next.LastFrame = frame

	switch st.Phase {
	case Idle:
		if g < cfg.OnsetThreshold || st.Refractory(frame) > 0 {
			return nil, next, nil
		}
		n := Note{
			Role:       cfg.Role,
			Channel:    cfg.Channel,
			Program:    cfg.Program,
			Pitch:      Pitch(cfg.PitchSource.Normalized(sig), cfg.Scale, cfg.BaseNote, cfg.NoteRange),
			Velocity:   cfg.Velocity.Velocity(g / cfg.SignalCeiling),
			OnsetFrame: frame,
			EndFrame:   frame + 1,
		}
		if cfg.Modulation {
			n.Modulation = HueModulation(st.LastHue, sig.Hue)
		}
		next.LastHue = sig.Hue
		next, err = openNote(next, n)
		if err == nil {
			debug.Log("mapper", "%v open %v", cfg.Role, n)
		}
		return nil, next, err

	case Sustaining:
		if g >= cfg.ReleaseThreshold {
			next.Open.EndFrame = frame + 1
			return nil, next, nil
		}
		var n Note
		n, next, err = closeNote(next, frame)
		if err != nil {
			return nil, next, err
		}
		next.ReadyFrame = frame + 1 + cfg.RefractoryFrames
		debug.Log("mapper", "%v close %v", cfg.Role, n)
		return []Note{n}, next, nil
	}
	return nil, st, fmt.Errorf("%w: unknown phase %d", ErrInvariantViolation, st.Phase)
}

// Finish ends a track after its final signal. An open note is force-closed
// so that it covers lastFrame, the last frame index of the stream, or the
// last signal seen if that is later.
func Finish(st TrackState, lastFrame int) ([]Note, TrackState, error) {
	if st.Phase != Sustaining {
		return nil, st, nil
	}
	if lastFrame < st.LastFrame {
		lastFrame = st.LastFrame
	}
	n, next, err := closeNote(st, lastFrame+1)
	if err != nil {
		return nil, next, err
	}
	debug.Log("mapper", "%v force-close %v", n.Role, n)
	return []Note{n}, next, nil
}

// Mapper is the lazy note stream of one track. It pulls signals from its
// source only when asked for a note, consumes the source once, and cannot
// be restarted.
type Mapper struct {
	cfg     TrackConfig
	src     SignalSource
	st      TrackState
	pending []Note
	done    bool
}

// NewMapper validates cfg and returns a mapper over src.
func NewMapper(cfg TrackConfig, src SignalSource) (*Mapper, error) {
	if field, err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%v track %s: %w", cfg.Role, field, err)
	}
	return &Mapper{cfg: cfg, src: src}, nil
}

// Config returns the track configuration.
func (m *Mapper) Config() TrackConfig {
	return m.cfg
}

// State returns the current track state.
func (m *Mapper) State() TrackState {
	return m.st
}

// Next returns the next closed note. ok is false once the source is
// exhausted and any open note has been flushed.
func (m *Mapper) Next() (Note, bool, error) {
	for len(m.pending) == 0 {
		if m.done {
			return Note{}, false, nil
		}
		sig, ok, err := m.src.Next()
		if err != nil {
			return Note{}, false, err
		}
		var notes []Note
		if !ok {
			last := m.st.LastFrame
			if e, isEnd := m.src.(StreamEnd); isEnd {
				last = max(last, e.LastFrame())
			}
			notes, m.st, err = Finish(m.st, last)
			m.done = true
		} else {
			notes, m.st, err = Step(sig, m.cfg, m.st)
		}
		if err != nil {
			m.done = true
			return Note{}, false, err
		}
		m.pending = append(m.pending, notes...)
	}
	n := m.pending[0]
	m.pending = m.pending[1:]
	return n, true, nil
}
