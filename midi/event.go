package midi

import "fmt"

// MIDI message types
const (
	NoteOn        uint8 = 0x90
	NoteOff       uint8 = 0x80
	ControlChange uint8 = 0xB0
)

// ModWheel is the controller number of the modulation wheel.
const ModWheel uint8 = 1

// Event is one tick-resolved channel message of a merged sequence. For a
// ControlChange, Note holds the controller number and Velocity its value.
type Event struct {
	Tick     int64
	Type     uint8 // NoteOn, NoteOff, ControlChange
	Channel  uint8 // MIDI channel 0-15
	Note     uint8
	Velocity uint8
	Track    int // index into Sequence.Tracks
}

func (e Event) String() string {
	switch e.Type {
	case NoteOff:
		return fmt.Sprintf("tick=%d track=%d ch=%d off note=%d", e.Tick, e.Track, e.Channel, e.Note)
	case ControlChange:
		return fmt.Sprintf("tick=%d track=%d ch=%d cc%d=%d", e.Tick, e.Track, e.Channel, e.Note, e.Velocity)
	}
	return fmt.Sprintf("tick=%d track=%d ch=%d on note=%d vel=%d", e.Tick, e.Track, e.Channel, e.Note, e.Velocity)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName spells a MIDI note with middle C (60) as C4.
func NoteName(pitch uint8) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], int(pitch)/12-1)
}
