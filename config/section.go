package config

import (
	"fmt"

	"vid2mid/sequencer"
)

func ptr[T any](v T) *T { return &v }

// SectionOf returns a section that spells out every field of c.
func SectionOf(c sequencer.TrackConfig) TrackSection {
	s := TrackSection{
		Program:          ptr(int(c.Program)),
		Channel:          ptr(int(c.Channel)),
		Scale:            append([]int(nil), c.Scale...),
		BaseNote:         ptr(c.BaseNote),
		OnsetThreshold:   ptr(c.OnsetThreshold),
		ReleaseThreshold: ptr(c.ReleaseThreshold),
		RefractoryFrames: ptr(c.RefractoryFrames),
		SignalCeiling:    ptr(c.SignalCeiling),
		PitchSource:      ptr(string(c.PitchSource)),
		Modulation:       ptr(c.Modulation),
		VelocityCurve: &VelocitySection{
			Kind: ptr(string(c.Velocity.Kind)),
			Min:  ptr(c.Velocity.Min),
			Max:  ptr(c.Velocity.Max),
		},
	}
	if c.Name != "" {
		s.Name = ptr(c.Name)
	}
	if c.NoteRange != nil {
		s.NoteRange = []int{c.NoteRange.Low, c.NoteRange.High}
	}
	return s
}

// Merge lays over on top of s: every field set in over wins.
func (s TrackSection) Merge(over TrackSection) TrackSection {
	out := s
	if over.Name != nil {
		out.Name = over.Name
	}
	if over.Program != nil {
		out.Program = over.Program
	}
	if over.Channel != nil {
		out.Channel = over.Channel
	}
	if over.Scale != nil {
		out.Scale = over.Scale
		out.ScaleName = nil
	}
	if over.ScaleName != nil {
		out.ScaleName = over.ScaleName
		out.Scale = nil
	}
	if over.BaseNote != nil {
		out.BaseNote = over.BaseNote
	}
	if over.NoteRange != nil {
		out.NoteRange = over.NoteRange
	}
	if over.OnsetThreshold != nil {
		out.OnsetThreshold = over.OnsetThreshold
	}
	if over.ReleaseThreshold != nil {
		out.ReleaseThreshold = over.ReleaseThreshold
	}
	if over.RefractoryFrames != nil {
		out.RefractoryFrames = over.RefractoryFrames
	}
	if over.SignalCeiling != nil {
		out.SignalCeiling = over.SignalCeiling
	}
	if over.PitchSource != nil {
		out.PitchSource = over.PitchSource
	}
	if over.Modulation != nil {
		out.Modulation = over.Modulation
	}
	if over.VelocityCurve != nil {
		v := VelocitySection{}
		if out.VelocityCurve != nil {
			v = *out.VelocityCurve
		}
		if over.VelocityCurve.Kind != nil {
			v.Kind = over.VelocityCurve.Kind
		}
		if over.VelocityCurve.Min != nil {
			v.Min = over.VelocityCurve.Min
		}
		if over.VelocityCurve.Max != nil {
			v.Max = over.VelocityCurve.Max
		}
		out.VelocityCurve = &v
	}
	return out
}

// Apply copies the fields set in s onto c. It returns the name of the
// offending field on error.
func (s TrackSection) Apply(c *sequencer.TrackConfig) (string, error) {
	if s.Name != nil {
		c.Name = *s.Name
	}
	if s.Program != nil {
		if *s.Program < 0 || *s.Program > 127 {
			return "program", fmt.Errorf("program %d out of range", *s.Program)
		}
		c.Program = uint8(*s.Program)
	}
	if s.Channel != nil {
		if *s.Channel < 0 || *s.Channel > 15 {
			return "channel", fmt.Errorf("channel %d out of range", *s.Channel)
		}
		c.Channel = uint8(*s.Channel)
	}
	if s.Scale != nil && s.ScaleName != nil {
		return "scale", fmt.Errorf("scale and scale_name are mutually exclusive")
	}
	if s.Scale != nil {
		c.Scale = append(sequencer.Scale(nil), s.Scale...)
	}
	if s.ScaleName != nil {
		sc, ok := sequencer.ScaleByName(*s.ScaleName)
		if !ok {
			return "scale_name", fmt.Errorf("unknown scale %q", *s.ScaleName)
		}
		c.Scale = sc
	}
	if s.BaseNote != nil {
		c.BaseNote = *s.BaseNote
	}
	if s.NoteRange != nil {
		switch len(s.NoteRange) {
		case 0:
			c.NoteRange = nil
		case 2:
			c.NoteRange = &sequencer.NoteRange{Low: s.NoteRange[0], High: s.NoteRange[1]}
		default:
			return "note_range", fmt.Errorf("note range needs [low, high], got %v", s.NoteRange)
		}
	}
	if s.OnsetThreshold != nil {
		c.OnsetThreshold = *s.OnsetThreshold
	}
	if s.ReleaseThreshold != nil {
		c.ReleaseThreshold = *s.ReleaseThreshold
	}
	if s.RefractoryFrames != nil {
		c.RefractoryFrames = *s.RefractoryFrames
	}
	if s.SignalCeiling != nil {
		c.SignalCeiling = *s.SignalCeiling
	}
	if s.PitchSource != nil {
		c.PitchSource = sequencer.PitchSource(*s.PitchSource)
	}
	if s.Modulation != nil {
		c.Modulation = *s.Modulation
	}
	if v := s.VelocityCurve; v != nil {
		if v.Kind != nil {
			c.Velocity.Kind = sequencer.CurveKind(*v.Kind)
		}
		if v.Min != nil {
			c.Velocity.Min = *v.Min
		}
		if v.Max != nil {
			c.Velocity.Max = *v.Max
		}
	}
	return "", nil
}
