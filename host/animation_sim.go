//go:build !(js && wasm)

package host

import (
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/animotion/clock"
	"github.com/lixenwraith/animotion/sched/core"
)

// SimClock is the shared time source every simulated animation schedules
// its finish callback against. Tests construct their own with
// clock.NewMockSource so finish timing is deterministic; the debug CLI
// uses clock.NewRealSource.
type SimClock = clock.Source

// simAnimation is the default, non-js Animation implementation. It does
// not render anything; it only tracks play state and fires OnFinish at
// the scheduled wall-clock instant, the same contract a real host
// animation makes to ClipAnimation. Its pause/rate bookkeeping is a
// clock.PausableClock (spec.md §4.4 "compounded playback rate") rather
// than hand-rolled fields, matching the teacher's engine.PausableClock
// usage; the js,wasm binding has no equivalent bookkeeping to replace
// since the browser's own Animation object is its pausable clock.
type simAnimation struct {
	mu        sync.Mutex
	source    clock.Source
	kf        []Keyframe
	timing    Timing
	composite Composite

	clk   *clock.PausableClock
	epoch time.Time // clk.Now() value current() measures elapsed against

	playing  bool
	finished bool
	canceled bool

	onFinish []func()
	timer    *time.Timer
}

func newSimAnimation(source clock.Source, kf []Keyframe, timing Timing, composite Composite) *simAnimation {
	rate := timing.PlaybackRate
	if rate == 0 {
		rate = 1
	}
	clk := clock.NewPausableClock(source)
	clk.SetRate(rate)
	clk.Pause() // frozen until Play()
	return &simAnimation{
		source:    source,
		kf:        kf,
		timing:    timing,
		composite: composite,
		clk:       clk,
		epoch:     clk.Now(),
	}
}

func (a *simAnimation) Play() {
	a.mu.Lock()
	if a.canceled || a.finished {
		a.mu.Unlock()
		return
	}
	a.playing = true
	a.clk.Resume()
	remaining := a.timing.Delay + a.timing.Duration + a.timing.EndDelay - a.currentTimeLocked()
	a.mu.Unlock()
	a.scheduleFinish(remaining)
}

func (a *simAnimation) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		return
	}
	a.playing = false
	a.clk.Pause()
	a.stopTimerLocked()
}

func (a *simAnimation) Finish() {
	a.mu.Lock()
	if a.finished || a.canceled {
		a.mu.Unlock()
		return
	}
	a.finished = true
	a.playing = false
	a.clk.Pause()
	a.stopTimerLocked()
	callbacks := append([]func(){}, a.onFinish...)
	a.mu.Unlock()
	fireAll(callbacks)
}

func (a *simAnimation) Cancel() {
	a.mu.Lock()
	a.canceled = true
	a.playing = false
	a.clk.Pause()
	a.stopTimerLocked()
	a.mu.Unlock()
}

func (a *simAnimation) SetKeyframes(kf []Keyframe) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kf = kf
}

func (a *simAnimation) SetPlaybackRate(rate float64) {
	a.mu.Lock()
	a.clk.SetRate(rate)
	if rate == 0 {
		a.stopTimerLocked()
		a.mu.Unlock()
		return
	}
	playing := a.playing
	var remaining time.Duration
	if playing {
		remaining = a.timing.Delay + a.timing.Duration + a.timing.EndDelay - a.currentTimeLocked()
	}
	a.mu.Unlock()
	if playing {
		a.scheduleFinish(remaining)
	}
}

func (a *simAnimation) CurrentTime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentTimeLocked()
}

func (a *simAnimation) SetCurrentTime(t time.Duration) {
	a.mu.Lock()
	a.epoch = a.clk.Now().Add(-t)
	playing := a.playing
	var remaining time.Duration
	if playing {
		remaining = a.timing.Delay + a.timing.Duration + a.timing.EndDelay - t
	}
	a.mu.Unlock()
	if playing {
		a.scheduleFinish(remaining)
	}
}

func (a *simAnimation) OnFinish(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.finished {
		a.mu.Unlock()
		fn()
		a.mu.Lock()
		return
	}
	a.onFinish = append(a.onFinish, fn)
}

// currentTimeLocked assumes a.mu is held.
func (a *simAnimation) currentTimeLocked() time.Duration {
	switch {
	case a.canceled:
		return 0
	case a.finished:
		return a.timing.Delay + a.timing.Duration + a.timing.EndDelay
	default:
		return a.clk.Now().Sub(a.epoch)
	}
}

func (a *simAnimation) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *simAnimation) scheduleFinish(remaining time.Duration) {
	a.mu.Lock()
	a.stopTimerLocked()
	rate := a.clk.Rate()
	a.mu.Unlock()

	if remaining <= 0 || rate <= 0 {
		return
	}
	wallDelay := time.Duration(float64(remaining) / rate)

	a.mu.Lock()
	a.timer = time.AfterFunc(wallDelay, func() {
		core.Go(a.Finish)
	})
	a.mu.Unlock()
}

func fireAll(callbacks []func()) {
	for _, fn := range callbacks {
		fn()
	}
}

// SimElement is the default Element implementation: an in-memory stand-in
// for a DOM node, sufficient for scheduler tests and the debug CLI. It
// never lays out or paints anything — BoundingBox returns a caller-
// configurable fixed rectangle.
type SimElement struct {
	mu         sync.Mutex
	source     clock.Source
	tag        string
	classes    map[string]bool
	styles     map[string]string
	rendered   bool
	box        [4]float64 // x, y, width, height
	scrollLog  []ScrollOptions
}

// NewSimElement creates a simulated element. source drives every
// Animation it produces, so tests can advance all animations in lockstep
// with a single clock.MockSource.
func NewSimElement(source clock.Source, openingTag string) *SimElement {
	return &SimElement{
		source:   source,
		tag:      openingTag,
		classes:  make(map[string]bool),
		styles:   make(map[string]string),
		rendered: true,
	}
}

func (e *SimElement) Animate(kf []Keyframe, timing Timing, composite Composite) Animation {
	return newSimAnimation(e.source, kf, timing, composite)
}

func (e *SimElement) AddClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classes[name] = true
}

func (e *SimElement) RemoveClass(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.classes, name)
}

func (e *SimElement) HasClass(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classes[name]
}

func (e *SimElement) CommitStyles() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.rendered {
		return fmt.Errorf("host: element %s is not rendered", e.tag)
	}
	return nil
}

func (e *SimElement) ComputedStyle(property string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[property]
}

func (e *SimElement) ClearInlineStyle(properties []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range properties {
		delete(e.styles, p)
	}
}

func (e *SimElement) BoundingBox() (x, y, width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.box[0], e.box[1], e.box[2], e.box[3]
}

func (e *SimElement) SetBoundingBox(x, y, width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.box = [4]float64{x, y, width, height}
}

func (e *SimElement) ScrollIntoView(opts ScrollOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scrollLog = append(e.scrollLog, opts)
}

// SetRendered lets tests simulate an element being detached from the
// document, which CommitStyles reports as an error per spec.md §7.
func (e *SimElement) SetRendered(rendered bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rendered = rendered
}

func (e *SimElement) OpeningTag() string {
	return e.tag
}

var _ Element = (*SimElement)(nil)
var _ Animation = (*simAnimation)(nil)
