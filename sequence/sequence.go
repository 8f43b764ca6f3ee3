// Package sequence implements component C3, AnimSequence: an ordered
// list of clips committed into a parallelism graph and played/rewound
// with per-phase ordering guarantees (spec.md §4.3).
package sequence

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clip"
)

var idCounter atomic.Uint64

func nextID() uint64 { return idCounter.Add(1) }

// TimelineParent is the back-reference surface a Sequence needs from
// its owning timeline (weak/non-owning, spec.md Design Note §9).
// Implemented by *timeline.Timeline.
type TimelineParent interface {
	Rate() float64
	SkippingOn() bool
	Locator() animerr.Location
	StepNumber() int

	// Pause pauses the owning timeline, the wiring point for a
	// phase-hook error's pause propagation reaching up past the
	// sequence (spec.md §4.2 "Error-routing", §7 "Propagation policy").
	Pause() error
}

// HandlerFn is a sequence lifecycle hook (spec.md §3 "handlers").
type HandlerFn func(s *Sequence)

// Config holds a sequence's author-facing settings (spec.md §3).
type Config struct {
	Autoplays             bool
	AutoplaysNextSequence bool
	PlaybackRate          float64
}

// Sequence is AnimSequence (spec.md §3, §4.3).
type Sequence struct {
	mu sync.Mutex

	ID          uint64
	Description string
	Tag         string

	cfg Config

	clips []*clip.Clip

	parent TimelineParent

	onStartDo, onStartUndo   []HandlerFn
	onFinishDo, onFinishUndo []HandlerFn

	groups []group

	inProgress map[uint64]*clip.Clip

	isRunning   atomic.Bool
	isPaused    atomic.Bool
	isFinished  atomic.Bool
	wasPlayed   atomic.Bool
	wasRewound  atomic.Bool
	usingFinish atomic.Bool

	fullyFinished *clip.Promise
	finishGroup   singleflight.Group
}

// New creates an empty sequence. Clips are added with AddClip before
// the first Play/Rewind; Commit is invoked automatically on every run.
func New(description, tag string, cfg Config) *Sequence {
	if cfg.PlaybackRate == 0 {
		cfg.PlaybackRate = 1
	}
	return &Sequence{
		ID:          nextID(),
		Description: description,
		Tag:         tag,
		cfg:         cfg,
		inProgress:  make(map[uint64]*clip.Clip),
	}
}

// AddClip appends a clip to the sequence and binds its parent
// back-reference. Clips are never reparented (spec.md §3 "Lifecycle").
func (s *Sequence) AddClip(c *clip.Clip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.SetParent(s)
	s.clips = append(s.clips, c)
}

// Clips returns the sequence's owned clips in insertion order.
func (s *Sequence) Clips() []*clip.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*clip.Clip, len(s.clips))
	copy(out, s.clips)
	return out
}

// SetParent installs the owning timeline back-reference.
func (s *Sequence) SetParent(p TimelineParent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = p
}

func (s *Sequence) Parent() TimelineParent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// --- clip.Parent implementation ---

// SkippingOn reports whether clips launched now should run straight to
// completion rather than honor host timing: true once finish() has been
// called on the sequence (clips started later skip naturally, spec.md
// §4.3 "Pause / unpause / finish"), or when the owning timeline is
// itself skipping.
func (s *Sequence) SkippingOn() bool {
	if s.usingFinish.Load() {
		return true
	}
	s.mu.Lock()
	p := s.parent
	s.mu.Unlock()
	if p == nil {
		return false
	}
	return p.SkippingOn()
}

func (s *Sequence) CompoundedRate() float64 {
	s.mu.Lock()
	rate := s.cfg.PlaybackRate
	p := s.parent
	s.mu.Unlock()
	if p != nil {
		rate *= p.Rate()
	}
	return rate
}

// PauseRoot pauses the root of this sequence's hierarchy: the owning
// timeline if one is set, else the sequence itself (spec.md §4.2
// "Error-routing", §7 "Propagation policy").
func (s *Sequence) PauseRoot() error {
	s.mu.Lock()
	p := s.parent
	s.mu.Unlock()
	if p != nil {
		return p.Pause()
	}
	s.Pause()
	return nil
}

func (s *Sequence) Locator() animerr.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	var loc animerr.Location
	if s.parent != nil {
		loc = s.parent.Locator()
	}
	loc.SequenceTag = s.Tag
	loc.SequenceDesc = s.Description
	return loc
}

// --- status accessors ---

func (s *Sequence) IsRunning() bool   { return s.isRunning.Load() }
func (s *Sequence) IsPaused() bool    { return s.isPaused.Load() }
func (s *Sequence) IsFinished() bool  { return s.isFinished.Load() }
func (s *Sequence) WasPlayed() bool   { return s.wasPlayed.Load() }
func (s *Sequence) WasRewound() bool  { return s.wasRewound.Load() }
func (s *Sequence) UsingFinish() bool { return s.usingFinish.Load() }

func (s *Sequence) InProgressCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inProgress)
}

// OnStart and OnFinish register do/undo handlers (spec.md §3, §4.3
// "Handlers").
func (s *Sequence) OnStart(do, undo HandlerFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if do != nil {
		s.onStartDo = append(s.onStartDo, do)
	}
	if undo != nil {
		s.onStartUndo = append(s.onStartUndo, undo)
	}
}

func (s *Sequence) OnFinish(do, undo HandlerFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if do != nil {
		s.onFinishDo = append(s.onFinishDo, do)
	}
	if undo != nil {
		s.onFinishUndo = append(s.onFinishUndo, undo)
	}
}

// Autoplays and AutoplaysNextSequence expose the sequence's autoplay
// config to the owning timeline's step algorithm (spec.md §4.4 "Step").
func (s *Sequence) Autoplays() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Autoplays
}

func (s *Sequence) AutoplaysNextSequence() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.AutoplaysNextSequence
}

// UseCompoundedPlaybackRate broadcasts to every in-progress clip
// (spec.md §4.4 "Playback-rate broadcast").
func (s *Sequence) UseCompoundedPlaybackRate() {
	s.mu.Lock()
	inProgress := make([]*clip.Clip, 0, len(s.inProgress))
	for _, c := range s.inProgress {
		inProgress = append(inProgress, c)
	}
	s.mu.Unlock()
	for _, c := range inProgress {
		c.UseCompoundedPlaybackRate()
	}
}
