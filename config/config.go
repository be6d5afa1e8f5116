package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vid2mid/sequencer"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds the analysis settings shared by every track.
type GlobalConfig struct {
	ROI                  []int   `yaml:"roi,flow,omitempty" json:"roi,omitempty"` // [x, y, w, h], empty = whole frame
	Blur                 int     `yaml:"blur" json:"blur"`
	ColorChangeThreshold float64 `yaml:"color_change_threshold" json:"color_change_threshold"`
	MotionNoiseFloor     float64 `yaml:"motion_noise_floor" json:"motion_noise_floor"`
	SpikeFloor           float64 `yaml:"spike_floor" json:"spike_floor"`
	BaselineWindow       int     `yaml:"baseline_window" json:"baseline_window"`
	FlowBlock            int     `yaml:"flow_block" json:"flow_block"`
	FlowSearch           int     `yaml:"flow_search" json:"flow_search"`
	AnalysisWidth        int     `yaml:"analysis_width" json:"analysis_width"`
}

// TimingConfig sets the tempo grid of the output.
type TimingConfig struct {
	BPM          float64 `yaml:"bpm" json:"bpm"`
	TicksPerBeat int     `yaml:"ticks_per_beat" json:"ticks_per_beat"`
	FPS          float64 `yaml:"fps,omitempty" json:"fps,omitempty"` // 0 = use the source frame rate
}

// VelocitySection overrides parts of a velocity curve.
type VelocitySection struct {
	Kind *string `yaml:"kind,omitempty" json:"kind,omitempty"`
	Min  *int    `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *int    `yaml:"max,omitempty" json:"max,omitempty"`
}

// TrackSection overrides the defaults of one role. Nil fields keep the
// role default.
type TrackSection struct {
	Name             *string          `yaml:"name,omitempty" json:"name,omitempty"`
	Program          *int             `yaml:"program,omitempty" json:"program,omitempty"`
	Channel          *int             `yaml:"channel,omitempty" json:"channel,omitempty"`
	Scale            []int            `yaml:"scale,flow,omitempty" json:"scale,omitempty"`
	ScaleName        *string          `yaml:"scale_name,omitempty" json:"scale_name,omitempty"`
	BaseNote         *int             `yaml:"base_note,omitempty" json:"base_note,omitempty"`
	NoteRange        []int            `yaml:"note_range,flow,omitempty" json:"note_range,omitempty"` // [low, high]
	OnsetThreshold   *float64         `yaml:"onset_threshold,omitempty" json:"onset_threshold,omitempty"`
	ReleaseThreshold *float64         `yaml:"release_threshold,omitempty" json:"release_threshold,omitempty"`
	RefractoryFrames *int             `yaml:"refractory_frames,omitempty" json:"refractory_frames,omitempty"`
	SignalCeiling    *float64         `yaml:"signal_ceiling,omitempty" json:"signal_ceiling,omitempty"`
	PitchSource      *string          `yaml:"pitch_source,omitempty" json:"pitch_source,omitempty"`
	VelocityCurve    *VelocitySection `yaml:"velocity_curve,omitempty" json:"velocity_curve,omitempty"`
	Modulation       *bool            `yaml:"modulation,omitempty" json:"modulation,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Global GlobalConfig            `yaml:"global" json:"global"`
	Timing TimingConfig            `yaml:"timing" json:"timing"`
	Tracks map[string]TrackSection `yaml:"tracks,omitempty" json:"tracks,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	c := &Config{
		Global: GlobalConfig{
			Blur:                 5,
			ColorChangeThreshold: 15,
			MotionNoiseFloor:     0.5,
			SpikeFloor:           2,
			BaselineWindow:       15,
			FlowBlock:            8,
			FlowSearch:           4,
			AnalysisWidth:        320,
		},
		Timing: TimingConfig{
			BPM:          120,
			TicksPerBeat: 480,
		},
		Tracks: make(map[string]TrackSection),
	}
	for _, role := range sequencer.Roles {
		def, _ := sequencer.DefaultTrack(role)
		c.Tracks[role.String()] = SectionOf(def)
	}
	return c
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vid2mid"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path. An empty path means ConfigPath, which may
// be missing, in which case the defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes a config document over the defaults. ext selects JSON for
// ".json"; anything else is read as YAML.
func Parse(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()
	// tracks come from the role defaults unless the document names them
	cfg.Tracks = make(map[string]TrackSection)
	if strings.EqualFold(ext, ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Field: "file", Err: err}
		}
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ConfigError{Field: "file", Err: err}
	}
	return cfg, nil
}

// Marshal encodes the config as YAML, or JSON when ext is ".json".
func (c *Config) Marshal(ext string) ([]byte, error) {
	if strings.EqualFold(ext, ".json") {
		return json.MarshalIndent(c, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the config to path, or to ConfigPath if path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := c.Marshal(filepath.Ext(path))
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
