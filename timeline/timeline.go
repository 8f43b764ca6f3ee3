// Package timeline implements component C4, AnimTimeline: an ordered
// list of sequences stepped, jumped, paused, and skipped through as one
// unit (spec.md §3, §4.4).
package timeline

import (
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/internal/fsm"
	"github.com/lixenwraith/animotion/sequence"
)

var idCounter atomic.Uint64

func nextID() uint64 { return idCounter.Add(1) }

// Direction is the timeline's last-recorded playback direction
// (spec.md §3 "currentDirection").
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// Config holds a timeline's author-facing settings (spec.md §3).
type Config struct {
	TimelineName    string
	DebugMode       bool
	AutoLinksButtons bool
}

// Timeline-level FSM states (spec.md §4.4, §5 "Structure locks" and
// re-entrancy guards on isAnimating/isJumping).
const (
	stateIdle fsm.StateID = iota
	statePlaying
	stateJumping
	statePaused
)

// Timeline is AnimTimeline (spec.md §3, §4.4).
type Timeline struct {
	mu sync.Mutex

	ID  uint64
	cfg Config

	sequences      []*sequence.Sequence
	loadedSeqIndex int

	machine         *fsm.Machine[*Timeline]
	skippingOn      bool
	currentDirection Direction
	playbackRate    float64

	inProgress map[uint64]*sequence.Sequence

	buttons *bindings

	onStep, onJump []func(loadedSeqIndex int)
}

// New creates an empty timeline.
func New(cfg Config) *Timeline {
	t := &Timeline{
		ID:           nextID(),
		cfg:          cfg,
		playbackRate: 1,
		inProgress:   make(map[uint64]*sequence.Sequence),
	}
	t.machine = buildMachine()
	_ = t.machine.Init(t, stateIdle)
	return t
}

func buildMachine() *fsm.Machine[*Timeline] {
	m := fsm.NewMachine[*Timeline]()
	m.AddTransition(stateIdle, "step", statePlaying, nil)
	m.AddTransition(statePlaying, "doneStep", stateIdle, nil)
	m.AddTransition(stateIdle, "jump", stateJumping, nil)
	m.AddTransition(stateJumping, "doneJump", stateIdle, nil)
	m.AddTransition(stateIdle, "pause", statePaused, nil)
	m.AddTransition(statePlaying, "pause", statePaused, nil)
	m.AddTransition(statePaused, "unpause", stateIdle, nil)
	return m
}

// AddSequence appends a sequence to the timeline and binds its parent
// back-reference. Forbidden while isAnimating or isJumping (invariant
// I7, spec.md §5 "Structure locks").
func (t *Timeline) AddSequence(s *sequence.Sequence) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.machine.Current() != stateIdle {
		return &animerr.LockedOperationError{Loc: t.locatorLocked(), Op: "addSequences"}
	}
	if s.Parent() != nil {
		return &animerr.InvalidChildError{Loc: t.locatorLocked(), Reason: "sequence already has a parent timeline"}
	}
	if s.WasPlayed() && s.IsFinished() {
		return &animerr.InvalidChildError{Loc: t.locatorLocked(), Reason: "sequence is already in a forward-finished state"}
	}
	s.SetParent(t)
	t.sequences = append(t.sequences, s)
	return nil
}

// Sequences returns the timeline's owned sequences in order.
func (t *Timeline) Sequences() []*sequence.Sequence {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*sequence.Sequence, len(t.sequences))
	copy(out, t.sequences)
	return out
}

func (t *Timeline) LoadedSeqIndex() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadedSeqIndex
}

// Name returns the author-facing timeline name (spec.md §3 "config"),
// used to label TimelineStepped/TimelineJumped events.
func (t *Timeline) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.TimelineName
}

// OnStep registers a callback fired after Step (or a jump's internal
// stepping) moves loadedSeqIndex, the wiring point for
// events.TimelineStepped (spec.md §2).
func (t *Timeline) OnStep(fn func(loadedSeqIndex int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStep = append(t.onStep, fn)
}

// OnJump registers a callback fired once JumpTo* lands on its target,
// the wiring point for events.TimelineJumped (spec.md §2).
func (t *Timeline) OnJump(fn func(loadedSeqIndex int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onJump = append(t.onJump, fn)
}

func (t *Timeline) NumSequences() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sequences)
}

// --- sequence.TimelineParent implementation ---

func (t *Timeline) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playbackRate
}

func (t *Timeline) SkippingOn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.skippingOn
}

// StepNumber exposes loadedSeqIndex+1 to authors as 1-based (invariant
// I3).
func (t *Timeline) StepNumber() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadedSeqIndex + 1
}

func (t *Timeline) Locator() animerr.Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locatorLocked()
}

func (t *Timeline) locatorLocked() animerr.Location {
	return animerr.Location{
		TimelineName: t.cfg.TimelineName,
		StepNumber:   t.loadedSeqIndex + 1,
	}
}

// --- status ---

func (t *Timeline) IsAnimating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine.Current() == statePlaying
}

func (t *Timeline) IsPaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine.Current() == statePaused
}

func (t *Timeline) IsJumping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.machine.Current() == stateJumping
}

func (t *Timeline) CurrentDirection() Direction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDirection
}

func (t *Timeline) TurnSkippingOn()  { t.mu.Lock(); t.skippingOn = true; t.mu.Unlock() }
func (t *Timeline) TurnSkippingOff() { t.mu.Lock(); t.skippingOn = false; t.mu.Unlock() }
func (t *Timeline) ToggleSkipping() {
	t.mu.Lock()
	t.skippingOn = !t.skippingOn
	t.mu.Unlock()
}

// Pause and Unpause broadcast to the in-progress sequence set (spec.md
// §4.4, mirroring sequence-level pause/unpause down one level).
func (t *Timeline) Pause() error {
	t.mu.Lock()
	if !t.machine.Fire(t, "pause") {
		t.mu.Unlock()
		return nil
	}
	inProgress := t.inProgressSnapshotLocked()
	t.mu.Unlock()
	for _, s := range inProgress {
		s.Pause()
	}
	return nil
}

func (t *Timeline) Unpause() error {
	t.mu.Lock()
	if !t.machine.Fire(t, "unpause") {
		t.mu.Unlock()
		return nil
	}
	inProgress := t.inProgressSnapshotLocked()
	t.mu.Unlock()
	for _, s := range inProgress {
		s.Unpause()
	}
	return nil
}

func (t *Timeline) inProgressSnapshotLocked() []*sequence.Sequence {
	out := make([]*sequence.Sequence, 0, len(t.inProgress))
	for _, s := range t.inProgress {
		out = append(out, s)
	}
	return out
}

// SetPlaybackRate changes the timeline rate and walks in-progress
// sequences broadcasting the recompounded rate down to their in-progress
// clips (spec.md §4.4 "Playback-rate broadcast").
func (t *Timeline) SetPlaybackRate(rate float64) {
	t.mu.Lock()
	t.playbackRate = rate
	inProgress := t.inProgressSnapshotLocked()
	t.mu.Unlock()
	for _, s := range inProgress {
		s.UseCompoundedPlaybackRate()
	}
}

func (t *Timeline) trackInProgress(s *sequence.Sequence, in bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if in {
		t.inProgress[s.ID] = s
	} else {
		delete(t.inProgress, s.ID)
	}
}
