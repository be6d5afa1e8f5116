package sequencer

import "fmt"

// Phase is the state of a track's note envelope.
type Phase int

const (
	Idle Phase = iota
	Sustaining
)

func (p Phase) String() string {
	if p == Sustaining {
		return "sustaining"
	}
	return "idle"
}

// Note is one closed note of a track. It sounds from the start of
// OnsetFrame until the start of EndFrame.
type Note struct {
	Role       Role
	Channel    uint8
	Program    uint8
	Pitch      uint8
	Velocity   uint8
	Modulation uint8 // mod wheel value sent with the onset, if the track modulates
	OnsetFrame int
	EndFrame   int
}

func (n Note) String() string {
	return fmt.Sprintf("%v ch=%d pitch=%d vel=%d frames=[%d,%d)", n.Role, n.Channel, n.Pitch, n.Velocity, n.OnsetFrame, n.EndFrame)
}

// TrackState is everything a track mapper remembers between frames. The
// zero value is the state before the first signal.
type TrackState struct {
	Phase      Phase
	Open       Note    // valid while Sustaining
	ReadyFrame int     // first frame allowed to open a note (refractory timer)
	LastFrame  int     // index of the last signal seen
	Started    bool    // a signal has been seen
	LastHue    float64 // hue at the previous onset, 0 before the first
}

// Refractory returns how many more frames must elapse after frame before a
// note may open.
func (s TrackState) Refractory(frame int) int {
	if r := s.ReadyFrame - frame; r > 0 {
		return r
	}
	return 0
}
