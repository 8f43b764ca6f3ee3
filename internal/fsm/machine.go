// Package fsm is a small flat finite-state machine, adapted from the
// teacher's engine/fsm package (trimmed of hierarchical regions and the
// TOML config loader — a timeline's idle/playing/jumping/paused states are a
// single flat set, not a tree, and the transition table is defined in Go,
// not loaded from a config file).
//
// timeline.Timeline uses one Machine[*Timeline] to centralize its
// re-entrancy and structure-lock guards (isAnimating/isPaused/isJumping)
// instead of scattering boolean checks across every method.
package fsm

import "fmt"

// StateID identifies a state.
type StateID int

// GuardFunc returns true if a transition should be allowed to fire.
type GuardFunc[T any] func(ctx T) bool

// ActionFunc executes a side effect on state entry/exit.
type ActionFunc[T any] func(ctx T)

type transition[T any] struct {
	target StateID
	guard  GuardFunc[T]
}

type node[T any] struct {
	onEnter []ActionFunc[T]
	onExit  []ActionFunc[T]
	trans   map[string][]transition[T] // keyed by trigger name
}

// Machine is a generic flat FSM runtime. T is the context type passed to
// guards and actions (typically the owning *timeline.Timeline).
type Machine[T any] struct {
	nodes   map[StateID]*node[T]
	current StateID
	initial StateID
	started bool
}

// NewMachine creates an empty machine.
func NewMachine[T any]() *Machine[T] {
	return &Machine[T]{nodes: make(map[StateID]*node[T])}
}

// DefineState registers a state, creating it if unseen.
func (m *Machine[T]) DefineState(id StateID) {
	if _, ok := m.nodes[id]; !ok {
		m.nodes[id] = &node[T]{trans: make(map[string][]transition[T])}
	}
}

// OnEnter appends an entry action for a state.
func (m *Machine[T]) OnEnter(id StateID, fn ActionFunc[T]) {
	m.DefineState(id)
	m.nodes[id].onEnter = append(m.nodes[id].onEnter, fn)
}

// OnExit appends an exit action for a state.
func (m *Machine[T]) OnExit(id StateID, fn ActionFunc[T]) {
	m.DefineState(id)
	m.nodes[id].onExit = append(m.nodes[id].onExit, fn)
}

// AddTransition registers a guarded transition from "from" to "target",
// reachable by firing "trigger". A nil guard always allows the
// transition. Transitions for the same trigger are evaluated in
// registration order; the first whose guard passes (or is nil) wins.
func (m *Machine[T]) AddTransition(from StateID, trigger string, target StateID, guard GuardFunc[T]) {
	m.DefineState(from)
	m.DefineState(target)
	n := m.nodes[from]
	n.trans[trigger] = append(n.trans[trigger], transition[T]{target: target, guard: guard})
}

// Init enters the initial state, running its OnEnter actions.
func (m *Machine[T]) Init(ctx T, initial StateID) error {
	if _, ok := m.nodes[initial]; !ok {
		return fmt.Errorf("fsm: unknown initial state %d", initial)
	}
	m.initial = initial
	m.current = initial
	m.started = true
	for _, fn := range m.nodes[initial].onEnter {
		fn(ctx)
	}
	return nil
}

// Current returns the active state.
func (m *Machine[T]) Current() StateID { return m.current }

// Fire attempts the named trigger from the current state. Returns true
// if a transition occurred.
func (m *Machine[T]) Fire(ctx T, trigger string) bool {
	if !m.started {
		return false
	}
	n := m.nodes[m.current]
	for _, tr := range n.trans[trigger] {
		if tr.guard == nil || tr.guard(ctx) {
			m.transition(ctx, tr.target)
			return true
		}
	}
	return false
}

// CanFire reports whether trigger would succeed from the current state,
// without performing the transition.
func (m *Machine[T]) CanFire(ctx T, trigger string) bool {
	n := m.nodes[m.current]
	for _, tr := range n.trans[trigger] {
		if tr.guard == nil || tr.guard(ctx) {
			return true
		}
	}
	return false
}

func (m *Machine[T]) transition(ctx T, target StateID) {
	if target == m.current {
		return
	}
	for _, fn := range m.nodes[m.current].onExit {
		fn(ctx)
	}
	m.current = target
	for _, fn := range m.nodes[target].onEnter {
		fn(ctx)
	}
}
