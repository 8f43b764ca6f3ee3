// Package events is the scheduler's internal lifecycle notification bus:
// a lock-free MPSC ring buffer plus a typed router, adapted from the
// teacher's events package. It is the wiring point for host-side devtools
// (out of scope per spec.md §1) and backs cmd/animotion-debugger.
package events

import "time"

// Type identifies a scheduler lifecycle event.
type Type int

const (
	// ClipPhaseCrossed is the type for a clip's playback crossing a
	// registered phase position. Payload: *PhasePayload. No scheduler
	// code pushes it.
	ClipPhaseCrossed Type = iota

	// ClipStarted fires when a clip's host animation is told to play or
	// finish (skip). Payload: *ClipPayload.
	ClipStarted

	// ClipFinished fires when a clip completes its current direction's
	// whole phase. Payload: *ClipPayload.
	ClipFinished

	// SequenceCommitted fires when a Root-built sequence starts a play or
	// rewind run, after that run's commit computes its groupings.
	// Payload: *SequencePayload.
	SequenceCommitted

	// SequenceFinished fires when a sequence's play or rewind run
	// completes. Payload: *SequencePayload.
	SequenceFinished

	// TimelineStepped fires after Timeline.Step moves loadedSeqIndex.
	// Payload: *TimelinePayload.
	TimelineStepped

	// TimelineJumped fires after Timeline.JumpTo* lands on its target.
	// Payload: *TimelinePayload.
	TimelineJumped

	// RoadblockStalled fires when a clip pauses at a roadblock whose
	// promises have not yet resolved. Payload: *ClipPayload.
	RoadblockStalled

	// Warning is the type for non-fatal conditions. Payload:
	// *WarningPayload. No scheduler code pushes it; a missing playback
	// button is reported through the log package instead.
	Warning
)

// Event is a single notification with metadata.
type Event struct {
	Type      Type
	Payload   any
	Sequence  uint64 // monotonic counter, for debug-tool ordering
	Timestamp time.Time
}

// ClipPayload describes a clip-scoped event.
type ClipPayload struct {
	ClipID   string
	Category string
}

// PhasePayload describes a phase-position crossing.
type PhasePayload struct {
	ClipID string
	Phase  string
	Dir    string
}

// SequencePayload describes a sequence-scoped event.
type SequencePayload struct {
	SequenceID string
	Tag        string
}

// TimelinePayload describes a timeline-scoped event.
type TimelinePayload struct {
	TimelineName   string
	LoadedSeqIndex int
}

// WarningPayload carries a human-readable warning message.
type WarningPayload struct {
	Message string
}
