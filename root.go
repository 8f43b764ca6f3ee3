// Package animotion is the library's single entry point: a factory
// (spec.md §4.5) that builds Timelines, Sequences, and Clips sharing one
// generator bank, status registry, and event router, and that owns the
// scroll-anchor stack Scroller clips push onto. It issues no constructor
// tokens: clip.New, sequence.New and timeline.New are exported and can be
// called directly, and only objects built through a Root are wired to
// its bank, registry and event queue.
package animotion

import (
	"strconv"

	"github.com/lixenwraith/animotion/clip"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/events"
	"github.com/lixenwraith/animotion/sequence"
	"github.com/lixenwraith/animotion/status"
	"github.com/lixenwraith/animotion/timeline"
)

// Config holds Root construction options (spec.md §3 "config" on
// Timeline, generalized to the façade that builds them).
type Config struct {
	DebugMode        bool
	AutoLinksButtons bool

	// ClassDefaults seeds clip.ResolveConfig's lowest
	// precedence layer for every clip this Root constructs.
	ClassDefaults clip.Config
}

// Root is the top-level factory. Every Timeline, Sequence, and Clip an
// application builds should go through one Root so they share a
// generator bank, status registry, event router, and scroll-anchor
// stack (spec.md §4.5, Design Note §9 "explicit improvement over a
// bare package global").
type Root struct {
	cfg Config

	bank   *clip.GeneratorBank
	status *status.Registry
	queue  *events.Queue
	router *events.Router

	scroll scrollAnchorStack
}

// New creates a Root with an empty generator bank. Register built-in or
// custom effects on Bank() before constructing clips.
func New(cfg Config) *Root {
	q := events.NewQueue()
	return &Root{
		cfg:    cfg,
		bank:   clip.NewGeneratorBank(),
		status: status.NewRegistry(),
		queue:  q,
		router: events.NewRouter(q),
	}
}

// Bank exposes the generator bank so an application can Register/Merge
// effect presets before building clips.
func (r *Root) Bank() *clip.GeneratorBank { return r.bank }

// Status returns the shared metrics registry a host application polls
// or exports (spec.md §4.5 "added").
func (r *Root) Status() *status.Registry { return r.status }

// Events returns the internal event queue and its router, the wiring
// point for cmd/animotion-debugger and any other devtools consumer
// (spec.md §2).
func (r *Root) Events() (*events.Queue, *events.Router) { return r.queue, r.router }

// NewTimeline builds a Timeline under this Root. An AutoLinksButtons or
// DebugMode field left false in cfg takes the Root's value, so a caller
// can turn either option on for one timeline but not off.
func (r *Root) NewTimeline(cfg timeline.Config) *timeline.Timeline {
	if !cfg.AutoLinksButtons {
		cfg.AutoLinksButtons = r.cfg.AutoLinksButtons
	}
	if !cfg.DebugMode {
		cfg.DebugMode = r.cfg.DebugMode
	}
	t := timeline.New(cfg)
	r.status.Ints.Get("root.timelines_created").Add(1)
	r.wireTimelineEvents(t)
	return t
}

// wireTimelineEvents counts steps/jumps in the status registry and
// pushes TimelineStepped/TimelineJumped onto the event queue (spec.md
// §4.5 "added").
func (r *Root) wireTimelineEvents(t *timeline.Timeline) {
	t.OnStep(func(idx int) {
		r.status.Ints.Get("timeline.steps").Add(1)
		r.queue.Push(events.Event{Type: events.TimelineStepped, Payload: &events.TimelinePayload{TimelineName: t.Name(), LoadedSeqIndex: idx}})
	})
	t.OnJump(func(idx int) {
		r.status.Ints.Get("timeline.jumps").Add(1)
		r.queue.Push(events.Event{Type: events.TimelineJumped, Payload: &events.TimelinePayload{TimelineName: t.Name(), LoadedSeqIndex: idx}})
	})
}

// NewSequence builds a Sequence under this Root.
func (r *Root) NewSequence(description, tag string, cfg sequence.Config) *sequence.Sequence {
	s := sequence.New(description, tag, cfg)
	r.status.Ints.Get("root.sequences_created").Add(1)
	r.wireSequenceEvents(s, tag)
	return s
}

// wireSequenceEvents counts in-progress/committed runs in the status
// registry and pushes SequenceCommitted (at the start of each run, after
// its commit) and SequenceFinished (at its end) onto the event queue.
// onFinishUndo fires at the start of a rewind (the backward counterpart
// of onStartDo) and onStartUndo fires at its end (the backward
// counterpart of onFinishDo) — the order Sequence.Rewind fires them in.
func (r *Root) wireSequenceEvents(s *sequence.Sequence, tag string) {
	payload := func() *events.SequencePayload {
		return &events.SequencePayload{SequenceID: strconv.FormatUint(s.ID, 10), Tag: tag}
	}
	runStarted := func(*sequence.Sequence) {
		r.status.Ints.Get("sequence.commits").Add(1)
		r.status.Ints.Get("sequence.in_progress").Add(1)
		r.queue.Push(events.Event{Type: events.SequenceCommitted, Payload: payload()})
	}
	runFinished := func(*sequence.Sequence) {
		r.status.Ints.Get("sequence.in_progress").Add(-1)
		r.queue.Push(events.Event{Type: events.SequenceFinished, Payload: payload()})
	}
	s.OnStart(runStarted, runFinished)
	s.OnFinish(runFinished, runStarted)
}

// scrollAnchorStack is pushed by a "~scroll-self" Scroller clip on
// forward play and popped on rewind (spec.md §4.5, Design Note §9). It
// is a Root field, never a package global, so two independent Roots
// (e.g. two test suites) never share state.
type scrollAnchorStack struct {
	elements []host.Element
}

func (s *scrollAnchorStack) push(el host.Element) { s.elements = append(s.elements, el) }

func (s *scrollAnchorStack) pop() host.Element {
	n := len(s.elements)
	if n == 0 {
		return nil
	}
	el := s.elements[n-1]
	s.elements = s.elements[:n-1]
	return el
}

func (s *scrollAnchorStack) peek() host.Element {
	if len(s.elements) == 0 {
		return nil
	}
	return s.elements[len(s.elements)-1]
}
