package config

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	delay := 100
	cfg := &RootConfig{
		DebugMode:        true,
		AutoLinksButtons: true,
		ClassDefaults: ClipDefaults{
			DelayMS: &delay,
		},
		Timelines: []TimelineConfig{
			{TimelineName: "main", AutoLinksButtons: true},
		},
	}

	path := filepath.Join(t.TempDir(), "animotion.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.DebugMode || !got.AutoLinksButtons {
		t.Fatal("expected DebugMode and AutoLinksButtons to round-trip true")
	}
	if got.ClassDefaults.DelayMS == nil || *got.ClassDefaults.DelayMS != 100 {
		t.Fatalf("ClassDefaults.DelayMS = %v, want 100", got.ClassDefaults.DelayMS)
	}
	if len(got.Timelines) != 1 || got.Timelines[0].TimelineName != "main" {
		t.Fatalf("Timelines = %v, want one entry named main", got.Timelines)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error loading a nonexistent file")
	}
}

func TestClipDefaultsToClipConfigOnlySetsPresentFields(t *testing.T) {
	rate := 2.0
	d := ClipDefaults{PlaybackRate: &rate}

	cfg := d.ToClipConfig()
	if cfg.PlaybackRate == nil || *cfg.PlaybackRate != 2.0 {
		t.Fatalf("PlaybackRate = %v, want 2.0", cfg.PlaybackRate)
	}
	if cfg.Delay != nil {
		t.Fatal("expected Delay to stay nil when DelayMS is unset")
	}
}
