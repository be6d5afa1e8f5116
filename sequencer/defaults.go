package sequencer

// defaultTracks holds the per-role settings user configuration is laid
// over, one field at a time.
var defaultTracks = map[Role]TrackConfig{
	RoleBackground: {
		Role:             RoleBackground,
		Scale:            Scale{0, 3, 7, 10}, // minor 7th
		BaseNote:         36,
		Program:          52, // choir pad
		Channel:          0,
		Velocity:         VelocityCurve{Kind: CurveSqrt, Min: 40, Max: 110},
		OnsetThreshold:   15,
		ReleaseThreshold: 10,
		RefractoryFrames: 0,
		SignalCeiling:    60,
		PitchSource:      PitchHue,
		Modulation:       true,
	},
	RoleMedium: {
		Role:             RoleMedium,
		Scale:            Scale{0, 2, 4, 7, 9}, // pentatonic
		BaseNote:         48,
		Program:          74, // flute
		Channel:          1,
		Velocity:         VelocityCurve{Kind: CurveLinear, Min: 30, Max: 127},
		OnsetThreshold:   1,
		ReleaseThreshold: 0.5,
		RefractoryFrames: 2,
		SignalCeiling:    4,
		PitchSource:      PitchDirection,
	},
	RoleDetail: {
		Role:             RoleDetail,
		Scale:            Scale{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		BaseNote:         84,
		NoteRange:        &NoteRange{Low: 84, High: 96},
		Program:          127, // gunshot
		Channel:          2,
		Velocity:         VelocityCurve{Kind: CurveLinear, Min: 60, Max: 127},
		OnsetThreshold:   8,
		ReleaseThreshold: 4,
		RefractoryFrames: 3,
		SignalCeiling:    40,
		PitchSource:      PitchHue,
	},
}

// DefaultTrack returns a copy of the default configuration of a role.
func DefaultTrack(r Role) (TrackConfig, bool) {
	c, ok := defaultTracks[r]
	if !ok {
		return TrackConfig{}, false
	}
	c.Scale = append(Scale(nil), c.Scale...)
	if c.NoteRange != nil {
		rng := *c.NoteRange
		c.NoteRange = &rng
	}
	return c, true
}
