package sequence

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clip"
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/clock"
	"github.com/lixenwraith/animotion/host"
)

func newPlaybackTestClip(t *testing.T, cat category.Tag, duration time.Duration) *clip.Clip {
	t.Helper()
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>")
	dur := duration
	cfg := clip.Config{Duration: &dur}
	if cat == category.Entrance {
		el.AddClass(category.DisplayNoneClass)
	}
	c, err := clip.New(cat, el, "fade", nil, cfg)
	if err != nil {
		t.Fatalf("clip.New: %v", err)
	}
	if err := c.BindGenerator(clip.BankEntry{
		Shape: clip.ShapeKeyframes,
		Keyframes: func(c *clip.Clip, args []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}, nil
		},
	}); err != nil {
		t.Fatalf("BindGenerator: %v", err)
	}
	return c
}

func TestSequencePlayRunsSingleClipToCompletion(t *testing.T) {
	c := newPlaybackTestClip(t, category.Emphasis, 20*time.Millisecond)
	s := New("", "", Config{})
	s.AddClip(c)

	done := make(chan error, 1)
	go func() { done <- s.Play(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Play did not complete")
	}

	if !s.WasPlayed() || s.WasRewound() {
		t.Fatal("expected WasPlayed and not WasRewound")
	}
	if !c.WasPlayed() {
		t.Fatal("expected clip WasPlayed")
	}
}

func TestSequenceRewindAfterPlay(t *testing.T) {
	c := newPlaybackTestClip(t, category.Emphasis, 20*time.Millisecond)
	s := New("", "", Config{})
	s.AddClip(c)

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := s.Rewind(context.Background()); err != nil {
		t.Fatalf("Rewind: %v", err)
	}

	if !s.WasRewound() || s.WasPlayed() {
		t.Fatal("expected WasRewound and not WasPlayed")
	}
	if !c.WasRewound() {
		t.Fatal("expected clip WasRewound")
	}
}

// TestSequenceRewindOverlappingGroup pins spec.md §4.3 "Backward
// playback" for a group where two clips start together but finish at
// different times, so the rewindGroup wait-position falls into the
// c.FullFinishTime() > next.FullStartTime() branch; the 60ms offset is
// past the short clip's 20ms whole phase, so the wait is at that
// phase's backward end.
func TestSequenceRewindOverlappingGroup(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))

	elLong := host.NewSimElement(src, "<div>")
	longDur := 60 * time.Millisecond
	long, err := clip.New(category.Emphasis, elLong, "fade", nil, clip.Config{Duration: &longDur})
	if err != nil {
		t.Fatalf("clip.New long: %v", err)
	}
	if err := long.BindGenerator(clip.BankEntry{
		Shape: clip.ShapeKeyframes,
		Keyframes: func(c *clip.Clip, args []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}, nil
		},
	}); err != nil {
		t.Fatalf("BindGenerator long: %v", err)
	}

	elShort := host.NewSimElement(src, "<div>")
	shortDur := 20 * time.Millisecond
	startsWithPrevious := true
	short, err := clip.New(category.Emphasis, elShort, "fade", nil, clip.Config{Duration: &shortDur, StartsWithPrevious: &startsWithPrevious})
	if err != nil {
		t.Fatalf("clip.New short: %v", err)
	}
	if err := short.BindGenerator(clip.BankEntry{
		Shape: clip.ShapeKeyframes,
		Keyframes: func(c *clip.Clip, args []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}, nil
		},
	}); err != nil {
		t.Fatalf("BindGenerator short: %v", err)
	}

	s := New("", "", Config{})
	s.AddClip(long)
	s.AddClip(short)

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Rewind(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Rewind: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Rewind did not complete")
	}

	if !long.WasRewound() || !short.WasRewound() {
		t.Fatal("expected both clips WasRewound")
	}
}

// TestPlayErrorPausesSequence pins spec.md §4.2 "Error-routing"/§7
// "Propagation policy" scenario 6: a phase-hook error (here,
// InvalidEntranceAttempt from an Entrance clip played on a not-hidden
// element) must leave the sequence paused, not merely reject Play.
func TestPlayErrorPausesSequence(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>") // no DisplayNoneClass: invalid entrance
	dur := 20 * time.Millisecond
	c, err := clip.New(category.Entrance, el, "fade", nil, clip.Config{Duration: &dur})
	if err != nil {
		t.Fatalf("clip.New: %v", err)
	}
	if err := c.BindGenerator(clip.BankEntry{
		Shape: clip.ShapeKeyframes,
		Keyframes: func(c *clip.Clip, args []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}, nil
		},
	}); err != nil {
		t.Fatalf("BindGenerator: %v", err)
	}

	s := New("", "", Config{})
	s.AddClip(c)

	if err := s.Play(context.Background()); err == nil {
		t.Fatal("expected InvalidEntranceAttempt for a not-hidden element")
	}
	if !s.IsPaused() {
		t.Fatal("expected the sequence left paused after a start-hook error")
	}
}

// TestRoadblockStallsFinish pins spec.md §8 scenario 5: a clip with an
// unresolved roadblock keeps the sequence's Play pending until the
// roadblock's promise is manually resolved.
func TestRoadblockStallsFinish(t *testing.T) {
	c := newPlaybackTestClip(t, category.Emphasis, 30*time.Millisecond)

	gate := clip.NewPromise()
	pos, _ := clip.ParsePosition("50%", animerr.Location{})
	if err := c.Animation().AddRoadblocks(host.Forward, clip.PhaseActive, pos, []*clip.Promise{gate}); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}

	s := New("", "", Config{})
	s.AddClip(c)

	done := make(chan error, 1)
	go func() { done <- s.Play(context.Background()) }()

	select {
	case <-done:
		t.Fatal("sequence settled before roadblock resolved")
	case <-time.After(50 * time.Millisecond):
	}

	gate.Resolve()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sequence did not settle after roadblock resolved")
	}
}
