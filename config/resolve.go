package config

import (
	"fmt"
	"image"

	"vid2mid/analysis"
	"vid2mid/sequencer"
	"vid2mid/vision"
)

// Resolved is a config checked against one video and ready to run.
type Resolved struct {
	Analysis analysis.Config
	Tracks   []sequencer.TrackConfig // in role order
	Timing   sequencer.Timing
}

// Resolve validates the config against a frame size and source frame rate.
// A non-zero timing.fps overrides the source rate.
func (c *Config) Resolve(frame image.Point, fps float64) (*Resolved, error) {
	an, err := c.analysisConfig(frame)
	if err != nil {
		return nil, err
	}

	timing := sequencer.Timing{FPS: fps, TicksPerBeat: c.Timing.TicksPerBeat, BPM: c.Timing.BPM}
	if c.Timing.FPS > 0 {
		timing.FPS = c.Timing.FPS
	}
	if err := timing.Validate(); err != nil {
		return nil, &ConfigError{Field: "timing", Err: err}
	}

	tracks, err := c.trackConfigs()
	if err != nil {
		return nil, err
	}
	return &Resolved{Analysis: an, Tracks: tracks, Timing: timing}, nil
}

func (c *Config) analysisConfig(frame image.Point) (analysis.Config, error) {
	g := c.Global
	roi := vision.FullFrame(frame)
	switch len(g.ROI) {
	case 0:
	case 4:
		roi = vision.ROI{X: g.ROI[0], Y: g.ROI[1], W: g.ROI[2], H: g.ROI[3]}
	default:
		return analysis.Config{}, &ConfigError{Field: "global.roi", Err: fmt.Errorf("need [x, y, w, h], got %v", g.ROI)}
	}
	if err := roi.Validate(frame); err != nil {
		return analysis.Config{}, &ConfigError{Field: "global.roi", Err: err}
	}

	an := analysis.Config{
		ROI:                  roi,
		Blur:                 g.Blur,
		AnalysisWidth:        g.AnalysisWidth,
		ColorChangeThreshold: g.ColorChangeThreshold,
		MotionNoiseFloor:     g.MotionNoiseFloor,
		SpikeFloor:           g.SpikeFloor,
		BaselineWindow:       g.BaselineWindow,
		Flow:                 vision.FlowParams{Block: g.FlowBlock, Search: g.FlowSearch},
	}
	if err := an.Validate(frame); err != nil {
		return analysis.Config{}, &ConfigError{Field: "global", Err: err}
	}
	return an, nil
}

func (c *Config) trackConfigs() ([]sequencer.TrackConfig, error) {
	sections := make(map[sequencer.Role]TrackSection)
	for key, s := range c.Tracks {
		role, err := sequencer.ParseRole(key)
		if err != nil {
			return nil, &ConfigError{Field: "tracks." + key, Err: err}
		}
		if _, dup := sections[role]; dup {
			return nil, &ConfigError{Field: "tracks." + key, Err: fmt.Errorf("role %v configured twice", role)}
		}
		sections[role] = s
	}

	tracks := make([]sequencer.TrackConfig, 0, len(sequencer.Roles))
	for _, role := range sequencer.Roles {
		tc, _ := sequencer.DefaultTrack(role)
		prefix := "tracks." + role.String() + "."
		if s, ok := sections[role]; ok {
			if field, err := s.Apply(&tc); err != nil {
				return nil, &ConfigError{Field: prefix + field, Err: err}
			}
		}
		if field, err := tc.Validate(); err != nil {
			return nil, &ConfigError{Field: prefix + field, Err: err}
		}
		tracks = append(tracks, tc)
	}
	if err := sequencer.CheckChannels(tracks); err != nil {
		return nil, &ConfigError{Field: "tracks", Err: err}
	}
	return tracks, nil
}
