// Package host models the scheduler's one external collaborator: the
// browser's Web Animations API. Only the interface is in scope for this
// module (see spec.md §1) — a real binding lives behind the js,wasm build
// tag (animation_js.go) and calls straight into syscall/js; every other
// build uses the deterministic simulation in animation_sim.go, which is
// what the test suite and the debug CLI run against.
//
// The split mirrors the teacher's terminal.Backend pattern: one interface,
// one //go:build js && wasm implementation, one portable fallback.
package host

import "time"

// Direction is the playback direction of a clip's wrapped animation.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Keyframe is a single offset in a host animation's effect. Properties are
// left untyped (map[string]any) because the scheduler never interprets
// keyframe contents — it only forwards them to the host.
type Keyframe struct {
	Offset     *float64 // nil lets the host space offsets evenly
	Easing     string
	Properties map[string]any
}

// Timing mirrors the Web Animations API's EffectTiming, restricted to the
// fields the scheduler schedules around.
type Timing struct {
	Delay         time.Duration
	Duration      time.Duration
	EndDelay      time.Duration
	Easing        string
	PlaybackRate  float64
	Direction     string // "normal" | "reverse", used when mirroring frames
}

// Composite mirrors the Web Animations API's composite modes.
type Composite int

const (
	CompositeReplace Composite = iota
	CompositeAccumulate
	CompositeAdd
)

// Animation is a single host (browser) animation instance — the thing
// produced by Element.Animate(keyframes, timing). ClipAnimation owns two
// of these (one per direction) and never calls the host directly outside
// this interface.
type Animation interface {
	Play()
	Pause()
	Finish()
	Cancel()

	// SetKeyframes replaces the effect's keyframes in place, used when
	// generators are deferred until play-time (computeNow == false).
	SetKeyframes(kf []Keyframe)

	SetPlaybackRate(rate float64)

	// CurrentTime returns the animation's own current time, honoring
	// whatever pause/rate state the host has applied — sub-frame accurate
	// per spec.md §4.1.
	CurrentTime() time.Duration
	SetCurrentTime(t time.Duration)

	// OnFinish registers a callback invoked exactly once when the host
	// reports this animation instance finished (host "finish" event).
	OnFinish(fn func())
}

// Element is the DOM element a clip targets. Only the operations the
// scheduler needs are exposed; rendering, layout, and style computation
// beyond these are the host's job (spec.md Non-goals).
type Element interface {
	// Animate starts a new host animation with the given effect and
	// timing and returns its handle.
	Animate(kf []Keyframe, timing Timing, composite Composite) Animation

	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool

	// CommitStyles persists the element's current computed style as
	// inline style. Returns an error if the element (or an ancestor) is
	// not rendered — callers translate that into animerr.CommitStylesError.
	CommitStyles() error

	ComputedStyle(property string) string
	ClearInlineStyle(properties []string)

	// BoundingBox and ScrollIntoView are layout operations the host
	// performs; the scheduler never computes geometry itself
	// (spec.md Non-goals).
	BoundingBox() (x, y, width, height float64)
	ScrollIntoView(opts ScrollOptions)

	OpeningTag() string
}

// ScrollOptions mirrors the subset of the DOM's ScrollIntoViewOptions the
// Scroller category and the root façade's scroll-anchor stack need.
type ScrollOptions struct {
	Behavior string // "smooth" | "auto"
	Block    string
	Inline   string
}

// RegisterCustomProperties registers the two CSS custom properties the
// marker/connector surface depends on (--a-marker-opacity,
// --b-marker-opacity; see spec.md §6). The js,wasm build calls
// CSS.registerProperty; every other build is a no-op since there is no
// document to register against.
var RegisterCustomProperties = func() {}
