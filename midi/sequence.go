package midi

import "time"

// TrackMeta is the per-track tagging handed to the serializer.
type TrackMeta struct {
	Name    string `json:"name"`
	Channel uint8  `json:"channel"`
	Program uint8  `json:"program"`
}

// Sequence is a fully tick-resolved, channel-tagged event list. Events are in
// playback order.
type Sequence struct {
	BPM          float64
	TicksPerBeat int
	Tracks       []TrackMeta
	Events       []Event
}

// TrackEvents returns the events of track i in order.
func (s *Sequence) TrackEvents(i int) []Event {
	var out []Event
	for _, e := range s.Events {
		if e.Track == i {
			out = append(out, e)
		}
	}
	return out
}

// TickToDuration converts a tick offset into wall time at the sequence tempo.
func (s *Sequence) TickToDuration(tick int64) time.Duration {
	if s.BPM <= 0 || s.TicksPerBeat <= 0 {
		return 0
	}
	return time.Duration(float64(tick) * 60 * float64(time.Second) / (s.BPM * float64(s.TicksPerBeat)))
}

// LastTick returns the tick of the final event, 0 for an empty sequence.
func (s *Sequence) LastTick() int64 {
	if len(s.Events) == 0 {
		return 0
	}
	return s.Events[len(s.Events)-1].Tick
}

// Duration is the playing time of the whole sequence.
func (s *Sequence) Duration() time.Duration {
	return s.TickToDuration(s.LastTick())
}
