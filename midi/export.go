package midi

import (
	"encoding/json"
	"io"
	"os"
)

// NoteJSON is one note of a JSON dump.
type NoteJSON struct {
	Note     uint8 `json:"note"`
	Velocity uint8 `json:"velocity"`
	OnTick   int64 `json:"on_tick"`
	OffTick  int64 `json:"off_tick"`
}

// TrackJSON is one track of a JSON dump.
type TrackJSON struct {
	TrackMeta
	Notes []NoteJSON `json:"notes"`
}

// SequenceJSON is the JSON form of a sequence: notes paired per track.
type SequenceJSON struct {
	BPM          float64     `json:"bpm"`
	TicksPerBeat int         `json:"ticks_per_beat"`
	Tracks       []TrackJSON `json:"tracks"`
}

// ToJSON pairs every note-on with the next note-off of the same key on its
// track. Notes left open have OffTick equal to the last tick.
func (s *Sequence) ToJSON() SequenceJSON {
	out := SequenceJSON{BPM: s.BPM, TicksPerBeat: s.TicksPerBeat}
	open := make([]map[uint8][]int, len(s.Tracks))
	for i, t := range s.Tracks {
		out.Tracks = append(out.Tracks, TrackJSON{TrackMeta: t, Notes: []NoteJSON{}})
		open[i] = make(map[uint8][]int)
	}
	for _, e := range s.Events {
		if e.Track < 0 || e.Track >= len(out.Tracks) {
			continue
		}
		tr := &out.Tracks[e.Track]
		switch e.Type {
		case NoteOn:
			open[e.Track][e.Note] = append(open[e.Track][e.Note], len(tr.Notes))
			tr.Notes = append(tr.Notes, NoteJSON{Note: e.Note, Velocity: e.Velocity, OnTick: e.Tick, OffTick: -1})
		case NoteOff:
			q := open[e.Track][e.Note]
			if len(q) == 0 {
				continue
			}
			tr.Notes[q[0]].OffTick = e.Tick
			open[e.Track][e.Note] = q[1:]
		}
	}
	last := s.LastTick()
	for i := range out.Tracks {
		for j := range out.Tracks[i].Notes {
			if out.Tracks[i].Notes[j].OffTick < 0 {
				out.Tracks[i].Notes[j].OffTick = last
			}
		}
	}
	return out
}

// WriteJSON writes the indented JSON dump of s.
func WriteJSON(w io.Writer, s *Sequence) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.ToJSON())
}

// WriteJSONFile writes the JSON dump of s to path.
func WriteJSONFile(path string, s *Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
