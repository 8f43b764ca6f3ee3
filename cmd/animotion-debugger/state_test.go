package main

import (
	"testing"
	"time"

	"github.com/lixenwraith/animotion/sched/events"
)

func TestApplyCountsClipEvents(t *testing.T) {
	s := NewState()
	s.Apply(events.Event{Type: events.ClipStarted, Payload: &events.ClipPayload{ClipID: "c1", Category: "Entrance"}, Timestamp: time.Unix(0, 0)})
	s.Apply(events.Event{Type: events.ClipFinished, Payload: &events.ClipPayload{ClipID: "c1", Category: "Entrance"}, Timestamp: time.Unix(0, 0)})

	if s.Counts[events.ClipStarted] != 1 || s.Counts[events.ClipFinished] != 1 {
		t.Fatalf("counts = %v, want 1 started and 1 finished", s.Counts)
	}
	if len(s.Lines) != 2 {
		t.Fatalf("Lines len = %d, want 2", len(s.Lines))
	}
}

func TestApplyRoadblockStalledTriggersSoundCue(t *testing.T) {
	s := NewState()
	cue := s.Apply(events.Event{Type: events.RoadblockStalled, Payload: &events.ClipPayload{ClipID: "c1"}, Timestamp: time.Unix(0, 0)})
	if !cue {
		t.Fatal("expected RoadblockStalled to trigger a sound cue")
	}
	if s.Stalled != 1 {
		t.Fatalf("Stalled = %d, want 1", s.Stalled)
	}
}

func TestApplyNonStallEventDoesNotTriggerCue(t *testing.T) {
	s := NewState()
	cue := s.Apply(events.Event{Type: events.ClipStarted, Payload: &events.ClipPayload{ClipID: "c1"}, Timestamp: time.Unix(0, 0)})
	if cue {
		t.Fatal("expected ClipStarted not to trigger a sound cue")
	}
}

func TestApplyTimelineSteppedUpdatesIndex(t *testing.T) {
	s := NewState()
	s.Apply(events.Event{Type: events.TimelineStepped, Payload: &events.TimelinePayload{TimelineName: "main", LoadedSeqIndex: 3}, Timestamp: time.Unix(0, 0)})
	if s.StepIndex != 3 {
		t.Fatalf("StepIndex = %d, want 3", s.StepIndex)
	}
}

func TestApplyTrimsLogToMaxLines(t *testing.T) {
	s := NewState()
	for i := 0; i < logLines+50; i++ {
		s.Apply(events.Event{Type: events.Warning, Payload: &events.WarningPayload{Message: "x"}, Timestamp: time.Unix(0, 0)})
	}
	if len(s.Lines) != logLines {
		t.Fatalf("Lines len = %d, want %d", len(s.Lines), logLines)
	}
}
