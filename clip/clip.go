// Package clip implements components C1 (ClipAnimation, animation.go)
// and C2 (AnimClip, this file) of the scheduler: the atomic (element,
// effect) playback unit and its host-animation wrapper.
package clip

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/core"
)

var idCounter atomic.Uint64

func nextID() uint64 { return idCounter.Add(1) }

// Parent is the back-reference surface a Clip needs from its owning
// sequence (weak/non-owning per spec.md Design Note §9). Implemented by
// *sequence.Sequence; kept minimal here to avoid an import cycle.
type Parent interface {
	SkippingOn() bool
	CompoundedRate() float64
	Locator() animerr.Location

	// PauseRoot pauses the root of the caller's hierarchy (its own
	// owning timeline if it has one, else itself), the wiring point for
	// a phase-hook error's pause propagation (spec.md §4.2
	// "Error-routing", §7 "Propagation policy").
	PauseRoot() error
}

// Clip is AnimClip: a target element bound to an effect, timing, and
// modifiers, driving one Animation through its phases (spec.md §3, §4.2).
type Clip struct {
	mu sync.Mutex

	ID       uint64
	Category category.Tag
	Effect   string
	args     []any

	element host.Element
	anim    *Animation
	behavior category.Behavior

	cfg Config

	parent Parent // weak back-ref; nil for a standalone clip

	// status
	inProgress atomic.Bool
	isRunning  atomic.Bool
	isPaused   atomic.Bool
	wasPlayed  atomic.Bool
	wasRewound atomic.Bool

	// scheduled times (ms, unscaled) — assigned by the owning
	// sequence's commit algorithm via SetFullStartTime.
	fullStartTime    int64
	activeStartTime  int64
	activeFinishTime int64
	fullFinishTime   int64

	startsWithPrevious bool
	startsNextClipToo  bool

	computeNow        bool
	generatedForward  bool
	generatedBackward bool
	forwardKF         []host.Keyframe
	backwardKF        []host.Keyframe
	keyframeProps     []string

	genKeyframes func(forward bool) (fwd, bwd []host.Keyframe)
	genMutators  func(forward bool) (fwd, bwd Mutator)

	stash map[string]string

	connector category.Connector

	onForwardStart, onForwardFinish   []func()
	onBackwardStart, onBackwardFinish []func()
	onStall                           []func()

	lastCommitErr error
}

// New creates a clip bound to element with the resolved effect entry
// and config (spec.md §4.2). bank entries are resolved by the caller
// (animotion.Root) via ResolveConfig before constructing the clip.
func New(category_ category.Tag, element host.Element, effect string, args []any, cfg Config) (*Clip, error) {
	if element == nil {
		return nil, &animerr.InvalidElementError{Reason: "target element is nil"}
	}

	behavior := category.For(category_)

	c := &Clip{
		ID:       nextID(),
		Category: category_,
		Effect:   effect,
		args:     args,
		element:  element,
		behavior: behavior,
		cfg:      cfg,
		stash:    make(map[string]string),
	}

	if behavior.ForceDurationZero() {
		zero := time.Duration(0)
		c.cfg.Duration = &zero
	}
	if behavior.ForceStartsNextClipToo() {
		t := true
		c.cfg.StartsNextClipToo = &t
	}
	if c.cfg.Composite == nil {
		def := behavior.DefaultComposite()
		c.cfg.Composite = &def
	}

	c.startsWithPrevious = boolVal(c.cfg.StartsWithPrevious, false)
	c.startsNextClipToo = boolVal(c.cfg.StartsNextClipToo, false)
	c.computeNow = boolVal(c.cfg.ComputeNow, true)

	timing := host.Timing{
		Delay:        durVal(c.cfg.Delay, 0),
		Duration:     durVal(c.cfg.Duration, 0),
		EndDelay:     durVal(c.cfg.EndDelay, 0),
		Easing:       strVal(c.cfg.Easing, "ease"),
		PlaybackRate: floatVal(c.cfg.PlaybackRate, 1),
		Direction:    "normal",
	}
	c.anim = NewAnimation(element, timing, c.locator)
	c.anim.SetStallHook(func() { c.fireHooks(&c.onStall) })

	if err := behavior.Initialize(c); err != nil {
		return nil, wrapCategoryErr(err, c.locator())
	}

	return c, nil
}

// SetConnector binds the connector element for the three connector
// categories. animotion.Root calls this for ConnectorSetter/Entrance/Exit
// clip factories.
func (c *Clip) SetConnector(conn category.Connector) { c.connector = conn }

// SetParent installs the owning sequence back-reference.
func (c *Clip) SetParent(p Parent) { c.parent = p }

func (c *Clip) locator() animerr.Location {
	if c.parent != nil {
		loc := c.parent.Locator()
		loc.ClipCategory = c.Category.String()
		loc.ClipEffectName = c.Effect
		loc.ElementOpenTag = c.element.OpeningTag()
		return loc
	}
	return animerr.Location{
		ClipCategory:   c.Category.String(),
		ClipEffectName: c.Effect,
		ElementOpenTag: c.element.OpeningTag(),
	}
}

func wrapCategoryErr(err error, loc animerr.Location) error {
	switch err {
	case category.ErrInvalidEntrance:
		return &animerr.InvalidEntranceAttempt{Loc: loc, Reason: err.Error()}
	case category.ErrInvalidExit:
		return &animerr.InvalidExitAttempt{Loc: loc, Reason: err.Error()}
	case category.ErrInvalidConnector:
		return &animerr.InvalidElementError{Loc: loc, Reason: err.Error()}
	default:
		return err
	}
}

// --- category.Context implementation ---

func (c *Clip) Element() host.Element { return c.element }

func (c *Clip) HasClass(name string) bool { return c.element.HasClass(name) }
func (c *Clip) AddClass(name string)      { c.element.AddClass(name) }
func (c *Clip) RemoveClass(name string)   { c.element.RemoveClass(name) }

func (c *Clip) Stash(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.stash[key]
	return v, ok
}

func (c *Clip) SetStash(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stash[key] = value
}

func (c *Clip) EffectArgs() []any { return c.args }

func (c *Clip) HideNowType() category.HideType {
	if c.cfg.HideNowType == nil {
		return category.HideNone
	}
	return *c.cfg.HideNowType
}

func (c *Clip) ExitHideType() category.HideType {
	if c.cfg.ExitHideType == nil {
		return category.HideDisplayNone
	}
	return *c.cfg.ExitHideType
}

func (c *Clip) RemoveInlineStylesOnFinish() bool {
	return boolVal(c.cfg.RemoveInlineStylesOnFinish, false)
}

func (c *Clip) KeyframeProperties() []string { return c.keyframeProps }

func (c *Clip) ClearInlineStyle(properties []string) { c.element.ClearInlineStyle(properties) }

func (c *Clip) Connector() category.Connector { return c.connector }

// --- generator binding ---

// BindGenerator resolves the effect generator for entry.Shape into a
// pair of (forward, backward) producer closures. If computeNow, both
// run immediately and their output is bound to the host animation right
// away; otherwise the producers are stashed and RunForward/RunBackward
// invoke them when a run in that direction starts, before its delay
// phase (spec.md §4.2 "Pregeneration flag"). Generation is not deferred
// to the beginning of the active phase itself.
func (c *Clip) BindGenerator(entry BankEntry) error {
	switch entry.Shape {
	case ShapeKeyframes:
		if entry.Keyframes == nil {
			return fmt.Errorf("clip: generator shape ShapeKeyframes missing Keyframes func")
		}
		c.genKeyframes = func(bool) (forward, backward []host.Keyframe) {
			return entry.Keyframes(c, c.args)
		}
	case ShapeKeyframeGenerators:
		if entry.KeyframeGenerator == nil {
			return fmt.Errorf("clip: generator shape ShapeKeyframeGenerators missing func")
		}
		fwdFn, bwdFn := entry.KeyframeGenerator(c, c.args)
		c.genKeyframes = func(fwdDir bool) (forward, backward []host.Keyframe) {
			if fwdDir {
				forward = fwdFn()
			} else if bwdFn != nil {
				backward = bwdFn()
			}
			return
		}
	case ShapeRafMutators:
		if entry.RafMutators == nil {
			return fmt.Errorf("clip: generator shape ShapeRafMutators missing func")
		}
		c.genMutators = func(bool) (forward, backward Mutator) {
			return entry.RafMutators(c, c.args)
		}
	case ShapeRafMutatorGenerators:
		if entry.RafMutatorGens == nil {
			return fmt.Errorf("clip: generator shape ShapeRafMutatorGenerators missing func")
		}
		fwdGen, bwdGen := entry.RafMutatorGens(c, c.args)
		c.genMutators = func(fwdDir bool) (forward, backward Mutator) {
			if !fwdDir && bwdGen != nil {
				backward = bwdGen()
				return
			}
			forward = fwdGen()
			return
		}
	}

	if !c.computeNow {
		c.anim.Bind(nil, nil, *c.cfg.Composite)
		return nil
	}

	c.runGeneratorForDirection(true)
	c.runGeneratorForDirection(false)
	c.anim.Bind(c.forwardKF, c.backwardKF, *c.cfg.Composite)
	return nil
}

// runGeneratorForDirection runs whichever generator is bound and
// applies its output for one direction. Called eagerly by BindGenerator
// when computeNow, and lazily by RunForward/RunBackward otherwise. A
// nil backward result falls back to the forward frames/mutator per
// spec.md §4.2.
func (c *Clip) runGeneratorForDirection(forward bool) {
	switch {
	case c.genKeyframes != nil:
		fwd, bwd := c.genKeyframes(forward)
		if forward {
			c.forwardKF = fwd
			c.keyframeProps = propertyNames(fwd)
		} else {
			if bwd == nil {
				bwd = c.forwardKF
			}
			c.backwardKF = bwd
		}
	case c.genMutators != nil:
		fwd, bwd := c.genMutators(forward)
		if forward {
			c.anim.SetForwardMutator(wrapMutator(c, fwd))
		} else {
			if bwd == nil {
				bwd = fwd
			}
			c.anim.SetBackwardMutator(wrapMutator(c, bwd))
		}
	}
}

func wrapMutator(c *Clip, m Mutator) func(progress float64) {
	if m == nil {
		return nil
	}
	return func(progress float64) { m(c, progress) }
}

func propertyNames(kf []host.Keyframe) []string {
	seen := make(map[string]bool)
	var names []string
	for _, k := range kf {
		for prop := range k.Properties {
			if !seen[prop] {
				seen[prop] = true
				names = append(names, prop)
			}
		}
	}
	return names
}

// ComputeTween linearly interpolates a..b by progress, the helper
// mutator-based generators call via the clip receiver (spec.md §4.2).
func ComputeTween(a, b, progress float64) float64 {
	return a + (b-a)*progress
}

// --- scheduled times (set by the owning sequence's commit) ---

// SetFullStartTime assigns fullStartTime and derives activeStartTime,
// activeFinishTime, fullFinishTime from the clip's own timing, per
// invariant I4.
func (c *Clip) SetFullStartTime(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delayEnd, activeEnd, wholeEnd := c.anim.phaseBounds()
	c.fullStartTime = ms
	c.activeStartTime = ms + delayEnd
	c.activeFinishTime = ms + activeEnd
	c.fullFinishTime = ms + wholeEnd
}

func (c *Clip) FullStartTime() int64    { c.mu.Lock(); defer c.mu.Unlock(); return c.fullStartTime }
func (c *Clip) ActiveStartTime() int64  { c.mu.Lock(); defer c.mu.Unlock(); return c.activeStartTime }
func (c *Clip) ActiveFinishTime() int64 { c.mu.Lock(); defer c.mu.Unlock(); return c.activeFinishTime }
func (c *Clip) FullFinishTime() int64   { c.mu.Lock(); defer c.mu.Unlock(); return c.fullFinishTime }

func (c *Clip) StartsWithPrevious() bool { return c.startsWithPrevious }
func (c *Clip) StartsNextClipToo() bool  { return c.startsNextClipToo }

// --- status ---

func (c *Clip) InProgress() bool { return c.inProgress.Load() }
func (c *Clip) IsRunning() bool  { return c.isRunning.Load() }
func (c *Clip) IsPaused() bool   { return c.isPaused.Load() }
func (c *Clip) WasPlayed() bool  { return c.wasPlayed.Load() }
func (c *Clip) WasRewound() bool { return c.wasRewound.Load() }

// Animation exposes the underlying ClipAnimation for the owning
// sequence's commit algorithm (integrity blocks reference time
// promises generated here).
func (c *Clip) Animation() *Animation { return c.anim }

// --- playback (spec.md §4.2, §7 "ChildPlaybackError") ---

// Play is the author-facing entry point; forbidden once the clip has a
// parent sequence. A forward-start hook error (e.g.
// InvalidEntranceAttempt) is returned here as well as rejecting the
// returned promise.
func (c *Clip) Play() (*Promise, error) {
	if c.parent != nil {
		return nil, &animerr.ChildPlaybackError{Loc: c.locator(), Op: "play"}
	}
	p := c.RunForward()
	if err := p.Err(); err != nil {
		return p, err
	}
	return p, nil
}

func (c *Clip) Rewind() (*Promise, error) {
	if c.parent != nil {
		return nil, &animerr.ChildPlaybackError{Loc: c.locator(), Op: "rewind"}
	}
	return c.RunBackward(), nil
}

// RunForward and RunBackward are the engine entry points an owning
// sequence uses (not ownership-checked — the sequence IS the
// authorized caller).
func (c *Clip) RunForward() *Promise {
	c.anim.SetDirection(host.Forward)
	if c.parent != nil {
		c.anim.SetSkipping(c.parent.SkippingOn())
	}
	if !c.computeNow && !c.generatedForward {
		c.generatedForward = true
		c.runGeneratorForDirection(true)
		if c.genKeyframes != nil {
			c.anim.SetForwardFrames(c.forwardKF)
		}
	}

	c.inProgress.Store(true)
	c.isRunning.Store(true)
	c.isPaused.Store(false)

	if err := c.dispatchErr(c.behavior.OnStartForward(c)); err != nil {
		c.pauseRoot()
		return c.rejectStart(err)
	}
	c.fireHooks(&c.onForwardStart)

	done := NewPromise()
	whole := c.anim.Play()
	core.Go(func() {
		<-whole
		if err := c.dispatchErr(c.behavior.OnFinishForward(c)); err != nil {
			c.pauseRoot()
			done.Reject(err)
			return
		}
		c.fireHooks(&c.onForwardFinish)
		c.finishRun(true)
		done.Resolve()
	})
	return done
}

func (c *Clip) RunBackward() *Promise {
	c.anim.SetDirection(host.Backward)
	if c.parent != nil {
		c.anim.SetSkipping(c.parent.SkippingOn())
	}
	if !c.computeNow && !c.generatedBackward {
		c.generatedBackward = true
		c.runGeneratorForDirection(false)
		if c.genKeyframes != nil {
			c.anim.SetBackwardFrames(c.backwardKF)
		}
	}

	c.inProgress.Store(true)
	c.isRunning.Store(true)
	c.isPaused.Store(false)

	if err := c.dispatchErr(c.behavior.OnStartBackward(c)); err != nil {
		c.pauseRoot()
		return c.rejectStart(err)
	}
	c.fireHooks(&c.onBackwardStart)

	done := NewPromise()
	whole := c.anim.Play()
	core.Go(func() {
		<-whole
		if err := c.dispatchErr(c.behavior.OnFinishBackward(c)); err != nil {
			c.pauseRoot()
			done.Reject(err)
			return
		}
		c.fireHooks(&c.onBackwardFinish)
		c.finishRun(false)
		done.Resolve()
	})
	return done
}

func (c *Clip) dispatchErr(err error) error {
	if err == nil {
		return nil
	}
	return wrapCategoryErr(err, c.locator())
}

func (c *Clip) rejectStart(err error) *Promise {
	c.inProgress.Store(false)
	c.isRunning.Store(false)
	p := NewPromise()
	p.Reject(err)
	return p
}

// pauseRoot pauses the root of c's hierarchy after a phase-hook error
// (spec.md §4.2 "Error-routing", §7 "Propagation policy"): the owning
// sequence's timeline if it has one, else the owning sequence, else c
// itself for a standalone clip.
func (c *Clip) pauseRoot() {
	if c.parent == nil {
		_ = c.Pause()
		return
	}
	_ = c.parent.PauseRoot()
}

func (c *Clip) finishRun(forward bool) {
	c.inProgress.Store(false)
	c.isRunning.Store(false)
	c.isPaused.Store(false)
	if forward {
		c.wasPlayed.Store(true)
		c.wasRewound.Store(false)
	} else {
		c.wasRewound.Store(true)
		c.wasPlayed.Store(false)
	}
	if err := c.applyCommitPolicy(); err != nil {
		// CommitStylesError does not fail playback on its own per
		// spec.md §4.2; surfaced to callers that check c.LastCommitErr.
		c.lastCommitErr = err
	}
}

// OnForwardStart/OnForwardFinish/OnBackwardStart/OnBackwardFinish let
// instrumentation (the debug CLI's live visualizer) observe a clip's
// lifecycle without participating in its control flow.
func (c *Clip) OnForwardStart(fn func())  { c.onForwardStart = append(c.onForwardStart, fn) }
func (c *Clip) OnForwardFinish(fn func()) { c.onForwardFinish = append(c.onForwardFinish, fn) }
func (c *Clip) OnBackwardStart(fn func()) { c.onBackwardStart = append(c.onBackwardStart, fn) }
func (c *Clip) OnBackwardFinish(fn func()) {
	c.onBackwardFinish = append(c.onBackwardFinish, fn)
}

// OnStall fires whenever this clip's playhead pauses at a roadblock
// whose promises have not yet resolved (spec.md §4.1 "Blocking
// semantics"); the debug CLI uses it to drive RoadblockStalled events.
func (c *Clip) OnStall(fn func()) { c.onStall = append(c.onStall, fn) }

func (c *Clip) fireHooks(hooks *[]func()) {
	for _, h := range *hooks {
		h()
	}
}

func (c *Clip) Pause() error {
	if c.parent != nil {
		return &animerr.ChildPlaybackError{Loc: c.locator(), Op: "pause"}
	}
	c.anim.Pause()
	c.isPaused.Store(true)
	c.isRunning.Store(false)
	return nil
}

func (c *Clip) Unpause() error {
	if c.parent != nil {
		return &animerr.ChildPlaybackError{Loc: c.locator(), Op: "unpause"}
	}
	c.anim.Play()
	c.isPaused.Store(false)
	c.isRunning.Store(true)
	return nil
}

func (c *Clip) Finish() error {
	if c.parent != nil {
		return &animerr.ChildPlaybackError{Loc: c.locator(), Op: "finish"}
	}
	c.anim.Finish()
	return nil
}

// PauseAsChild / UnpauseAsChild / FinishAsChild are the owning
// sequence's unchecked entry points, broadcast to in-progress clips
// (spec.md §4.3 "Pause / unpause / finish").
func (c *Clip) PauseAsChild() {
	c.anim.Pause()
	c.isPaused.Store(true)
	c.isRunning.Store(false)
}

func (c *Clip) UnpauseAsChild() {
	c.anim.Play()
	c.isPaused.Store(false)
	c.isRunning.Store(true)
}

func (c *Clip) FinishAsChild() {
	c.anim.Finish()
}

// UseCompoundedPlaybackRate applies timeline-rate × sequence-rate ×
// clip-rate to the active host animation (spec.md §4.4 "Playback-rate
// broadcast").
func (c *Clip) UseCompoundedPlaybackRate() {
	own := floatVal(c.cfg.PlaybackRate, 1)
	compounded := own
	if c.parent != nil {
		compounded = own * c.parent.CompoundedRate()
	}
	c.anim.UpdatePlaybackRate(compounded)
}

// --- commit-styles policy (spec.md §4.2) ---

var forceOverrideClass = "animotion-force-commit"

func (c *Clip) applyCommitPolicy() error {
	if !boolVal(c.cfg.CommitsStyles, false) {
		return nil
	}
	err := c.element.CommitStyles()
	if err == nil {
		return nil
	}
	if !boolVal(c.cfg.CommitStylesForcefully, false) {
		return &animerr.CommitStylesError{Loc: c.locator(), Err: err}
	}
	c.element.AddClass(forceOverrideClass)
	err2 := c.element.CommitStyles()
	c.element.RemoveClass(forceOverrideClass)
	if err2 != nil {
		return &animerr.CommitStylesError{Loc: c.locator(), Err: err2}
	}
	return nil
}

// LastCommitErr surfaces a non-fatal commit-styles failure to the
// owning sequence for its own error-routing decision (spec.md §4.2
// "Error-routing").
func (c *Clip) LastCommitErr() error { return c.lastCommitErr }
