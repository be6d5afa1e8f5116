package sequencer

import (
	"errors"
	"fmt"
)

// ErrChannelConflict is returned when two tracks share a MIDI channel.
var ErrChannelConflict = errors.New("tracks share a MIDI channel")

// TrackConfig is the read-only configuration of one role's track.
type TrackConfig struct {
	Role             Role
	Name             string
	Scale            Scale
	BaseNote         int
	NoteRange        *NoteRange // nil = no folding
	Program          uint8      // 0-127
	Channel          uint8      // MIDI channel 0-15
	Velocity         VelocityCurve
	OnsetThreshold   float64
	ReleaseThreshold float64
	RefractoryFrames int
	SignalCeiling    float64 // governing value that maps to full velocity
	PitchSource      PitchSource
	Modulation       bool // send the hue change since the previous onset on the mod wheel
}

// TrackName returns Name, or the role name if unset.
func (c TrackConfig) TrackName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Role.String()
}

// Validate checks the config. It returns the name of the offending field
// along with the error.
func (c TrackConfig) Validate() (field string, err error) {
	if _, err := Governing(c.Role); err != nil {
		return "role", err
	}
	if err := c.Scale.Validate(); err != nil {
		return "scale", err
	}
	if c.BaseNote < 0 || c.BaseNote > 127 {
		return "base_note", fmt.Errorf("base note %d out of range", c.BaseNote)
	}
	if c.NoteRange != nil {
		if err := c.NoteRange.Validate(); err != nil {
			return "note_range", err
		}
	}
	if c.Program > 127 {
		return "program", fmt.Errorf("program %d out of range", c.Program)
	}
	if c.Channel > 15 {
		return "channel", fmt.Errorf("channel %d out of range", c.Channel)
	}
	if err := c.Velocity.Validate(); err != nil {
		return "velocity_curve", err
	}
	if c.ReleaseThreshold < 0 {
		return "release_threshold", fmt.Errorf("release threshold %v is negative", c.ReleaseThreshold)
	}
	if c.OnsetThreshold < c.ReleaseThreshold {
		return "onset_threshold", fmt.Errorf("onset threshold %v below release threshold %v", c.OnsetThreshold, c.ReleaseThreshold)
	}
	if c.OnsetThreshold <= 0 {
		return "onset_threshold", fmt.Errorf("onset threshold %v must be positive", c.OnsetThreshold)
	}
	if c.RefractoryFrames < 0 {
		return "refractory_frames", fmt.Errorf("refractory frames %d is negative", c.RefractoryFrames)
	}
	if c.SignalCeiling <= 0 {
		return "signal_ceiling", fmt.Errorf("signal ceiling %v must be positive", c.SignalCeiling)
	}
	if err := c.PitchSource.Validate(); err != nil {
		return "pitch_source", err
	}
	return "", nil
}

// CheckChannels fails when two tracks are on the same MIDI channel.
func CheckChannels(tracks []TrackConfig) error {
	seen := make(map[uint8]Role)
	for _, t := range tracks {
		if other, ok := seen[t.Channel]; ok {
			return fmt.Errorf("%w: %v and %v on channel %d", ErrChannelConflict, other, t.Role, t.Channel)
		}
		seen[t.Channel] = t.Role
	}
	return nil
}
