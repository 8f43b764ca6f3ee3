// Command animotion-debugger is a terminal visualizer for a running
// animotion.Root: it drains the Root's event queue and renders a
// scrolling log plus live counters, the way the teacher's cmd/tui-demo
// renders its own ticker-driven demo state. Sounding a RoadblockStalled
// cue uses gopxl/beep's speaker the way audio.SoundManager does.
package main

import (
	"fmt"
	"time"

	"github.com/lixenwraith/animotion/sched/events"
)

// logLines bounds how many recent events the state keeps for rendering.
const logLines = 200

// State is the debugger's render state: a rolling log of formatted event
// lines plus running per-type counters. It is deliberately free of any
// tcell/beep dependency so Apply can be unit tested without a terminal.
type State struct {
	Lines     []string
	Counts    map[events.Type]int
	Stalled   int
	StepIndex int
}

// NewState returns an empty State ready for Apply.
func NewState() *State {
	return &State{Counts: make(map[events.Type]int)}
}

// Apply folds one event into the state, returning true if the event
// should trigger the roadblock-stall audio cue.
func (s *State) Apply(ev events.Event) (soundCue bool) {
	s.Counts[ev.Type]++
	s.Lines = append(s.Lines, formatEvent(ev))
	if len(s.Lines) > logLines {
		s.Lines = s.Lines[len(s.Lines)-logLines:]
	}

	switch ev.Type {
	case events.RoadblockStalled:
		s.Stalled++
		soundCue = true
	case events.TimelineStepped:
		if p, ok := ev.Payload.(*events.TimelinePayload); ok {
			s.StepIndex = p.LoadedSeqIndex
		}
	}
	return soundCue
}

func formatEvent(ev events.Event) string {
	ts := ev.Timestamp.Format("15:04:05.000")
	switch p := ev.Payload.(type) {
	case *events.ClipPayload:
		return fmt.Sprintf("%s %-18s clip=%s category=%s", ts, typeName(ev.Type), p.ClipID, p.Category)
	case *events.PhasePayload:
		return fmt.Sprintf("%s %-18s clip=%s phase=%s dir=%s", ts, typeName(ev.Type), p.ClipID, p.Phase, p.Dir)
	case *events.SequencePayload:
		return fmt.Sprintf("%s %-18s seq=%s tag=%s", ts, typeName(ev.Type), p.SequenceID, p.Tag)
	case *events.TimelinePayload:
		return fmt.Sprintf("%s %-18s timeline=%s index=%d", ts, typeName(ev.Type), p.TimelineName, p.LoadedSeqIndex)
	case *events.WarningPayload:
		return fmt.Sprintf("%s %-18s %s", ts, typeName(ev.Type), p.Message)
	default:
		return fmt.Sprintf("%s %-18s", ts, typeName(ev.Type))
	}
}

func typeName(t events.Type) string {
	switch t {
	case events.ClipPhaseCrossed:
		return "ClipPhaseCrossed"
	case events.ClipStarted:
		return "ClipStarted"
	case events.ClipFinished:
		return "ClipFinished"
	case events.SequenceCommitted:
		return "SequenceCommitted"
	case events.SequenceFinished:
		return "SequenceFinished"
	case events.TimelineStepped:
		return "TimelineStepped"
	case events.TimelineJumped:
		return "TimelineJumped"
	case events.RoadblockStalled:
		return "RoadblockStalled"
	case events.Warning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// summaryLine renders the header counters shown above the scrolling log.
func (s *State) summaryLine() string {
	return fmt.Sprintf("clips started=%d finished=%d  sequences committed=%d finished=%d  stalls=%d  step=%d  %s",
		s.Counts[events.ClipStarted], s.Counts[events.ClipFinished],
		s.Counts[events.SequenceCommitted], s.Counts[events.SequenceFinished],
		s.Stalled, s.StepIndex, time.Now().Format("15:04:05"))
}
