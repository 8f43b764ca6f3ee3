package clip

import (
	"sync"
	"time"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/core"
)

// Phase is one of a clip's three timing segments, or the whole
// concatenation (spec.md §4.1).
type Phase int

const (
	PhaseDelay Phase = iota
	PhaseActive
	PhaseEndDelay
	PhaseWhole
)

// pollInterval is how often the watcher goroutine samples a host
// animation's CurrentTime to detect phase-position crossings. The Web
// Animations API itself has no "crossed position X" event — a real
// binding would poll from requestAnimationFrame; off the js,wasm build
// this polls a plain ticker instead, at the same granularity a 240Hz
// display's RAF would deliver.
const pollInterval = 4 * time.Millisecond

type crossPoint struct {
	offsetMS int64
	promises []*Promise
	fired    bool
}

type blockPoint struct {
	offsetMS  int64
	awaits    []*Promise
	fired     bool
	roadblock bool
}

// Animation wraps one ClipAnimation: a forward and a mirrored backward
// host animation, exposing phase-indexed time promises and blocking
// lists (spec.md §4.1, component C1).
type Animation struct {
	mu sync.Mutex

	element host.Element
	loc     func() animerr.Location

	direction host.Direction

	forward  host.Animation
	backward host.Animation

	timingForward  host.Timing
	timingBackward host.Timing

	crossForward, crossBackward []*crossPoint
	blockForward, blockBackward []*blockPoint

	onDelayFinish, onActiveFinish, onEndDelayFinish []func(dir host.Direction)

	mutatorForward, mutatorBackward func(progress float64)

	onStall func()

	stopWatch chan struct{}
	skipping  bool
}

// NewAnimation creates a ClipAnimation wrapper. timing describes the
// forward timing; the backward timing is derived from it here by
// mirrorTiming (delay and endDelay swapped, direction "reverse").
func NewAnimation(element host.Element, timing host.Timing, locator func() animerr.Location) *Animation {
	return &Animation{
		element:        element,
		loc:            locator,
		timingForward:  timing,
		timingBackward: mirrorTiming(timing),
		direction:      host.Forward,
	}
}

func mirrorTiming(t host.Timing) host.Timing {
	mirrored := t
	mirrored.Delay, mirrored.EndDelay = t.EndDelay, t.Delay
	mirrored.Direction = "reverse"
	return mirrored
}

// Bind creates the underlying host animations from keyframes. Called
// once the clip's effect has been generated (immediately if computeNow,
// else at play-time).
func (a *Animation) Bind(forwardKF, backwardKF []host.Keyframe, composite host.Composite) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forward = a.element.Animate(forwardKF, a.timingForward, composite)
	if backwardKF != nil {
		a.backward = a.element.Animate(backwardKF, a.timingBackward, composite)
	} else {
		a.backward = a.element.Animate(forwardKF, a.timingBackward, composite)
	}
}

func (a *Animation) active() host.Animation {
	if a.direction == host.Backward {
		return a.backward
	}
	return a.forward
}

func (a *Animation) activeTiming() host.Timing {
	if a.direction == host.Backward {
		return a.timingBackward
	}
	return a.timingForward
}

// SetDirection swaps which host animation is active. Per spec.md §4.1
// this does not itself start playback.
func (a *Animation) SetDirection(dir host.Direction) {
	a.mu.Lock()
	a.direction = dir
	a.mu.Unlock()
}

func (a *Animation) Direction() host.Direction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.direction
}

// SetForwardFrames / SetBackwardFrames / SetForwardAndBackwardFrames
// replace an effect's keyframes for deferred (computeNow == false)
// generators.
func (a *Animation) SetForwardFrames(kf []host.Keyframe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forward.SetKeyframes(kf)
}

func (a *Animation) SetBackwardFrames(kf []host.Keyframe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.backward.SetKeyframes(kf)
}

func (a *Animation) SetForwardAndBackwardFrames(forwardKF, backwardKF []host.Keyframe, inferBackwardFromForward bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forward.SetKeyframes(forwardKF)
	if inferBackwardFromForward || backwardKF == nil {
		a.backward.SetKeyframes(forwardKF)
		return
	}
	a.backward.SetKeyframes(backwardKF)
}

// SetForwardMutator and SetBackwardMutator install the per-frame
// callback a mutator-based effect (generator mode "mutator" or
// "mutator-generator") drives the element with. watchLoop calls the
// active direction's mutator with the active phase's fractional
// progress on every poll tick (spec.md §4.2 "Mutator variants").
func (a *Animation) SetForwardMutator(fn func(progress float64)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutatorForward = fn
}

func (a *Animation) SetBackwardMutator(fn func(progress float64)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mutatorBackward = fn
}

// SetStallHook installs the callback runBlock fires just before it
// starts waiting on an unresolved roadblock (instrumentation only, the
// debug CLI's RoadblockStalled cue).
func (a *Animation) SetStallHook(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStall = fn
}

// UpdatePlaybackRate applies rate to whichever direction is active
// (spec.md §4.1).
func (a *Animation) UpdatePlaybackRate(rate float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active().SetPlaybackRate(rate)
}

// Play, Pause, Finish, Cancel delegate to the active direction's host
// animation; Play (re)starts the phase watcher and Cancel stops it.
// Play starts (or resumes) playback in the active direction and returns
// a channel that closes once the whole duration (delay+active+endDelay)
// has been reached in that direction — the signal AnimClip awaits to
// fire its onFinishForward/onFinishBackward hook.
func (a *Animation) Play() <-chan struct{} {
	a.mu.Lock()
	anim := a.active()
	skip := a.skipping
	a.mu.Unlock()

	if skip {
		anim.Finish()
		a.runPhaseHooksToCompletion()
		done := make(chan struct{})
		close(done)
		return done
	}
	anim.Play()
	return a.startWatch()
}

func (a *Animation) Pause() {
	a.mu.Lock()
	anim := a.active()
	a.mu.Unlock()
	anim.Pause()
}

func (a *Animation) Finish() {
	a.mu.Lock()
	anim := a.active()
	a.mu.Unlock()
	anim.Finish()
}

func (a *Animation) Cancel() {
	a.mu.Lock()
	anim := a.active()
	a.stopWatchLocked()
	a.mu.Unlock()
	anim.Cancel()
}

// SetSkipping mirrors spec.md §4.1 "Skipping": when true, Play calls
// Finish on the host animation instead, then fires every phase hook in
// order before returning.
func (a *Animation) SetSkipping(skip bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipping = skip
}

// OnDelayFinish / OnActiveFinish / OnEndDelayFinish register hooks
// invoked exactly once per play direction when the corresponding phase
// boundary is crossed.
func (a *Animation) OnDelayFinish(fn func(dir host.Direction)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onDelayFinish = append(a.onDelayFinish, fn)
}

func (a *Animation) OnActiveFinish(fn func(dir host.Direction)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onActiveFinish = append(a.onActiveFinish, fn)
}

func (a *Animation) OnEndDelayFinish(fn func(dir host.Direction)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onEndDelayFinish = append(a.onEndDelayFinish, fn)
}

// phaseBounds returns (delayEnd, activeEnd, wholeEnd) offsets in ms for
// the currently active direction's timing.
func (a *Animation) phaseBounds() (int64, int64, int64) {
	t := a.activeTiming()
	delayEnd := int64(t.Delay / time.Millisecond)
	activeEnd := delayEnd + int64(t.Duration/time.Millisecond)
	wholeEnd := activeEnd + int64(t.EndDelay/time.Millisecond)
	return delayEnd, activeEnd, wholeEnd
}

// phaseStart returns the offset (ms, within the active direction's
// whole timeline) at which the given phase begins.
func (a *Animation) phaseStart(p Phase) int64 {
	delayEnd, activeEnd, _ := a.phaseBounds()
	switch p {
	case PhaseDelay:
		return 0
	case PhaseActive:
		return delayEnd
	case PhaseEndDelay:
		return activeEnd
	default:
		return 0
	}
}

func (a *Animation) phaseLength(p Phase) int64 {
	delayEnd, activeEnd, wholeEnd := a.phaseBounds()
	switch p {
	case PhaseDelay:
		return delayEnd
	case PhaseActive:
		return activeEnd - delayEnd
	case PhaseEndDelay:
		return wholeEnd - activeEnd
	default:
		return wholeEnd
	}
}

// GenerateTimePromise returns a promise resolved when playback in
// direction dir crosses the given position within phase (spec.md
// §4.1). Crossings at or before the current playhead on a direction
// reversal fire immediately, in registration order — handled by the
// first poll of the watchLoop that startWatch launches.
func (a *Animation) GenerateTimePromise(dir host.Direction, phase Phase, pos Position) (*Promise, error) {
	length := a.phaseLengthFor(dir, phase)
	offset, err := pos.Resolve(length, a.loc())
	if err != nil {
		return nil, err
	}
	abs := a.phaseStartFor(dir, phase) + offset

	p := NewPromise()
	a.mu.Lock()
	cp := &crossPoint{offsetMS: abs, promises: []*Promise{p}}
	if dir == host.Forward {
		a.crossForward = append(a.crossForward, cp)
	} else {
		a.crossBackward = append(a.crossBackward, cp)
	}
	a.mu.Unlock()
	return p, nil
}

func (a *Animation) phaseLengthFor(dir host.Direction, p Phase) int64 {
	if dir == a.direction {
		return a.phaseLength(p)
	}
	saved := a.direction
	a.direction = dir
	l := a.phaseLength(p)
	a.direction = saved
	return l
}

func (a *Animation) phaseStartFor(dir host.Direction, p Phase) int64 {
	if dir == a.direction {
		return a.phaseStart(p)
	}
	saved := a.direction
	a.direction = dir
	s := a.phaseStart(p)
	a.direction = saved
	return s
}

// AddIntegrityBlocks and AddRoadblocks attach awaitables the playhead
// must wait on at the given position before resuming (spec.md §4.1).
// They block the playhead identically; kept as separate entry points per
// spec.md so §7 instrumentation can distinguish engine-inserted blocks
// from user-inserted ones: only roadblocks fire the stall hook.
func (a *Animation) AddIntegrityBlocks(dir host.Direction, phase Phase, pos Position, promises []*Promise) error {
	return a.addBlock(dir, phase, pos, promises, false)
}

func (a *Animation) AddRoadblocks(dir host.Direction, phase Phase, pos Position, promises []*Promise) error {
	return a.addBlock(dir, phase, pos, promises, true)
}

func (a *Animation) addBlock(dir host.Direction, phase Phase, pos Position, promises []*Promise, roadblock bool) error {
	length := a.phaseLengthFor(dir, phase)
	offset, err := pos.Resolve(length, a.loc())
	if err != nil {
		return err
	}
	abs := a.phaseStartFor(dir, phase) + offset

	bp := &blockPoint{offsetMS: abs, awaits: promises, roadblock: roadblock}
	a.mu.Lock()
	if dir == host.Forward {
		a.blockForward = append(a.blockForward, bp)
	} else {
		a.blockBackward = append(a.blockBackward, bp)
	}
	a.mu.Unlock()
	return nil
}

func (a *Animation) startWatch() <-chan struct{} {
	a.mu.Lock()
	a.stopWatchLocked()
	stop := make(chan struct{})
	a.stopWatch = stop
	a.mu.Unlock()

	done := make(chan struct{})
	core.Go(func() {
		a.watchLoop(stop)
		close(done)
	})
	return done
}

func (a *Animation) stopWatchLocked() {
	if a.stopWatch != nil {
		close(a.stopWatch)
		a.stopWatch = nil
	}
}

// watchLoop polls CurrentTime and fires phase hooks, time promises, and
// blocking points in position order. It exits when the animation
// finishes its whole duration or stop fires.
func (a *Animation) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	delayFired, activeFired, endDelayFired := false, false, false

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		a.mu.Lock()
		anim := a.active()
		dir := a.direction
		cur := int64(anim.CurrentTime() / time.Millisecond)
		delayEnd, activeEnd, wholeEnd := a.phaseBounds()

		if !delayFired && cur >= delayEnd {
			delayFired = true
			hooks := append([]func(host.Direction){}, a.onDelayFinish...)
			a.mu.Unlock()
			for _, h := range hooks {
				h(dir)
			}
			a.mu.Lock()
		}
		if !activeFired && cur >= activeEnd {
			activeFired = true
			hooks := append([]func(host.Direction){}, a.onActiveFinish...)
			a.mu.Unlock()
			for _, h := range hooks {
				h(dir)
			}
			a.mu.Lock()
		}
		if !endDelayFired && cur >= wholeEnd {
			endDelayFired = true
			hooks := append([]func(host.Direction){}, a.onEndDelayFinish...)
			a.mu.Unlock()
			for _, h := range hooks {
				h(dir)
			}
			a.mu.Lock()
		}

		var crosses []*crossPoint
		var blocks []*blockPoint
		var mutator func(float64)
		if dir == host.Forward {
			crosses, blocks = a.crossForward, a.blockForward
			mutator = a.mutatorForward
		} else {
			crosses, blocks = a.crossBackward, a.blockBackward
			mutator = a.mutatorBackward
		}
		if mutator != nil && activeEnd > delayEnd && cur >= delayEnd {
			progress := float64(cur-delayEnd) / float64(activeEnd-delayEnd)
			if progress > 1 {
				progress = 1
			}
			a.mu.Unlock()
			mutator(progress)
			a.mu.Lock()
		}
		var toResolve []*Promise
		for _, cp := range crosses {
			if !cp.fired && cur >= cp.offsetMS {
				cp.fired = true
				toResolve = append(toResolve, cp.promises...)
			}
		}
		var toBlockOn []*blockPoint
		for _, bp := range blocks {
			if !bp.fired && cur >= bp.offsetMS {
				bp.fired = true
				toBlockOn = append(toBlockOn, bp)
			}
		}
		done := endDelayFired
		a.mu.Unlock()

		for _, p := range toResolve {
			p.Resolve()
		}
		for _, bp := range toBlockOn {
			a.runBlock(anim, bp)
		}

		if done {
			return
		}
	}
}

// runBlock pauses playback, awaits every promise in bp, then resumes.
func (a *Animation) runBlock(anim host.Animation, bp *blockPoint) {
	anim.Pause()

	pending := false
	for _, p := range bp.awaits {
		if !p.IsSettled() {
			pending = true
			break
		}
	}
	a.mu.Lock()
	stallHook := a.onStall
	a.mu.Unlock()
	if pending && bp.roadblock && stallHook != nil {
		stallHook()
	}

	AllSettled(bp.awaits)
	anim.Play()
}

// runPhaseHooksToCompletion fires every phase hook immediately, used
// when a sequence has skippingOn and the clip finishes instantaneously
// (spec.md §4.1 "Skipping").
func (a *Animation) runPhaseHooksToCompletion() {
	a.mu.Lock()
	dir := a.direction
	delayHooks := append([]func(host.Direction){}, a.onDelayFinish...)
	activeHooks := append([]func(host.Direction){}, a.onActiveFinish...)
	endDelayHooks := append([]func(host.Direction){}, a.onEndDelayFinish...)
	var allPromises []*Promise
	for _, cp := range a.crossForward {
		allPromises = append(allPromises, cp.promises...)
	}
	for _, cp := range a.crossBackward {
		allPromises = append(allPromises, cp.promises...)
	}
	a.mu.Unlock()

	for _, h := range delayHooks {
		h(dir)
	}
	for _, h := range activeHooks {
		h(dir)
	}
	for _, h := range endDelayHooks {
		h(dir)
	}
	for _, p := range allPromises {
		p.Resolve()
	}
}
