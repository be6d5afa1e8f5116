package config

import (
	"fmt"
	"sort"
)

// presets are instrument and scale sets laid over the tracks of a config.
var presets = map[string]map[string]TrackSection{
	"cinematic": {
		"background": {Program: ptr(52), Scale: []int{0, 3, 7, 10}},
		"medium":     {Program: ptr(74), Scale: []int{0, 2, 4, 7, 9}},
		"detail":     {Program: ptr(127)},
	},
	"electronic": {
		"background": {Program: ptr(81), Scale: []int{0, 4, 7, 11}},
		"medium":     {Program: ptr(86), Scale: []int{0, 3, 6, 9}},
		"detail":     {Program: ptr(119)},
	},
}

// PresetNames lists the available presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset lays a named preset over the track sections of c.
func (c *Config) ApplyPreset(name string) error {
	p, ok := presets[name]
	if !ok {
		return &ConfigError{Field: "preset", Err: fmt.Errorf("unknown preset %q (have %v)", name, PresetNames())}
	}
	if c.Tracks == nil {
		c.Tracks = make(map[string]TrackSection)
	}
	for role, over := range p {
		key := role
		// keep whichever spelling the user already has
		if _, ok := c.Tracks[key]; !ok && role == "detail" {
			if _, ok := c.Tracks["details"]; ok {
				key = "details"
			}
		}
		c.Tracks[key] = c.Tracks[key].Merge(over)
	}
	return nil
}
