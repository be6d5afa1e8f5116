package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TempoTrackName names the conductor track of written files.
const TempoTrackName = "vid2mid"

// WriteSMF encodes seq as a type 1 Standard MIDI File: a tempo track
// followed by one track per entry of seq.Tracks, each opening with its
// program change.
func WriteSMF(w io.Writer, seq *Sequence) error {
	if seq.TicksPerBeat <= 0 || seq.TicksPerBeat > 0x7FFF {
		return fmt.Errorf("ticks per beat %d: out of range", seq.TicksPerBeat)
	}
	if seq.BPM <= 0 {
		return fmt.Errorf("bpm %v: must be positive", seq.BPM)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(uint16(seq.TicksPerBeat))

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(TempoTrackName))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(seq.BPM))
	tempo.Close(0)
	if err := s.Add(tempo); err != nil {
		return fmt.Errorf("tempo track: %w", err)
	}

	for i, meta := range seq.Tracks {
		if meta.Channel > 15 || meta.Program > 127 {
			return fmt.Errorf("track %q: channel %d / program %d out of range", meta.Name, meta.Channel, meta.Program)
		}
		var tr smf.Track
		tr.Add(0, smf.MetaTrackSequenceName(meta.Name))
		tr.Add(0, gomidi.ProgramChange(meta.Channel, meta.Program))

		var last int64
		for _, e := range seq.Events {
			if e.Track != i {
				continue
			}
			if e.Tick < last {
				return fmt.Errorf("track %q: event at tick %d after tick %d", meta.Name, e.Tick, last)
			}
			delta := uint32(e.Tick - last)
			last = e.Tick
			switch e.Type {
			case NoteOn:
				tr.Add(delta, gomidi.NoteOn(e.Channel, e.Note, e.Velocity))
			case NoteOff:
				tr.Add(delta, gomidi.NoteOff(e.Channel, e.Note))
			case ControlChange:
				tr.Add(delta, gomidi.ControlChange(e.Channel, e.Note, e.Velocity))
			default:
				return fmt.Errorf("track %q: unknown event type 0x%X", meta.Name, e.Type)
			}
		}
		tr.Close(0)
		if err := s.Add(tr); err != nil {
			return fmt.Errorf("track %q: %w", meta.Name, err)
		}
	}

	_, err := s.WriteTo(w)
	return err
}

// WriteFile writes seq to path as a Standard MIDI File.
func WriteFile(path string, seq *Sequence) error {
	var buf bytes.Buffer
	if err := WriteSMF(&buf, seq); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// ReadSMF decodes a file written by WriteSMF. Tracks without channel
// messages are treated as conductor tracks and skipped.
func ReadSMF(r io.Reader) (*Sequence, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format %v", s.TimeFormat)
	}

	seq := &Sequence{BPM: 120, TicksPerBeat: int(mt.Resolution())}
	tempoSeen := false

	for _, tr := range s.Tracks {
		var (
			abs        int64
			meta       TrackMeta
			events     []Event
			hasChannel bool
		)
		for _, ev := range tr {
			abs += int64(ev.Delta)
			msg := gomidi.Message(ev.Message)

			var ch, key, vel, prog, ctl, val uint8
			var bpm float64
			var name string
			switch {
			case ev.Message.GetMetaTempo(&bpm):
				if !tempoSeen {
					seq.BPM = bpm
					tempoSeen = true
				}
			case ev.Message.GetMetaTrackName(&name):
				meta.Name = name
			case msg.GetProgramChange(&ch, &prog):
				meta.Channel, meta.Program = ch, prog
				hasChannel = true
			case msg.GetNoteStart(&ch, &key, &vel):
				events = append(events, Event{Tick: abs, Type: NoteOn, Channel: ch, Note: key, Velocity: vel})
				hasChannel = true
			case msg.GetNoteEnd(&ch, &key):
				events = append(events, Event{Tick: abs, Type: NoteOff, Channel: ch, Note: key})
				hasChannel = true
			case msg.GetControlChange(&ch, &ctl, &val):
				events = append(events, Event{Tick: abs, Type: ControlChange, Channel: ch, Note: ctl, Velocity: val})
				hasChannel = true
			}
		}
		if !hasChannel {
			continue
		}
		idx := len(seq.Tracks)
		for i := range events {
			events[i].Track = idx
		}
		seq.Tracks = append(seq.Tracks, meta)
		seq.Events = append(seq.Events, events...)
	}

	// tracks were appended in priority order, so a stable sort by tick
	// restores the merged order
	sort.SliceStable(seq.Events, func(i, j int) bool {
		a, b := seq.Events[i], seq.Events[j]
		if a.Tick != b.Tick {
			return a.Tick < b.Tick
		}
		return a.Track < b.Track
	})
	return seq, nil
}

// ReadFile reads a Standard MIDI File from path.
func ReadFile(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSMF(f)
}
