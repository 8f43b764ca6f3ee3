// Package config loads an animotion.Root's author-facing settings from
// a YAML document, the same way the pack's director package
// round-trips its scenario files (gopkg.in/yaml.v3).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RootConfig is the on-disk shape of a Root's construction options plus
// the class-wide clip defaults applied under every effect-specific
// override (spec.md Design Note §9's ResolveConfig precedence chain).
type RootConfig struct {
	DebugMode        bool `yaml:"debugMode"`
	AutoLinksButtons bool `yaml:"autoLinksButtons"`

	ClassDefaults ClipDefaults `yaml:"classDefaults"`

	Timelines []TimelineConfig `yaml:"timelines"`
}

// ClipDefaults mirrors the subset of clip.Config an author can usefully
// set from a config file — the pointer-typed fields are expressed as
// plain values with a present/zero distinction handled by ToClipConfig
// and the Delay/Duration/EndDelay accessors.
type ClipDefaults struct {
	DelayMS        *int     `yaml:"delayMs"`
	DurationMS     *int     `yaml:"durationMs"`
	EndDelayMS     *int     `yaml:"endDelayMs"`
	Easing         *string  `yaml:"easing"`
	PlaybackRate   *float64 `yaml:"playbackRate"`
	CommitsStyles  *bool    `yaml:"commitsStyles"`
}

// TimelineConfig is one timeline.Config entry an author can declare
// ahead of time; wiring the declared name to an animotion.Root.NewTimeline
// call is the host application's job.
type TimelineConfig struct {
	TimelineName     string `yaml:"timelineName"`
	DebugMode        bool   `yaml:"debugMode"`
	AutoLinksButtons bool   `yaml:"autoLinksButtons"`
}

// Load reads and parses a RootConfig from path.
func Load(path string) (*RootConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg RootConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML, mirroring the pack's
// director.WriteScenario round-trip.
func Save(cfg *RootConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Delay returns the configured delay, or def if unset.
func (d ClipDefaults) Delay(def time.Duration) time.Duration {
	if d.DelayMS == nil {
		return def
	}
	return time.Duration(*d.DelayMS) * time.Millisecond
}

// Duration returns the configured duration, or def if unset.
func (d ClipDefaults) Duration(def time.Duration) time.Duration {
	if d.DurationMS == nil {
		return def
	}
	return time.Duration(*d.DurationMS) * time.Millisecond
}

// EndDelay returns the configured end delay, or def if unset.
func (d ClipDefaults) EndDelay(def time.Duration) time.Duration {
	if d.EndDelayMS == nil {
		return def
	}
	return time.Duration(*d.EndDelayMS) * time.Millisecond
}
