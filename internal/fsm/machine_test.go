package fsm

import "testing"

const (
	stateIdle StateID = iota
	stateRunning
	statePaused
)

type ctx struct {
	locked  bool
	entered []StateID
}

func buildMachine() (*Machine[*ctx], *ctx) {
	m := NewMachine[*ctx]()
	c := &ctx{}

	m.OnEnter(stateRunning, func(c *ctx) { c.entered = append(c.entered, stateRunning) })
	m.OnEnter(statePaused, func(c *ctx) { c.entered = append(c.entered, statePaused) })
	m.OnEnter(stateIdle, func(c *ctx) { c.entered = append(c.entered, stateIdle) })

	m.AddTransition(stateIdle, "play", stateRunning, nil)
	m.AddTransition(stateRunning, "pause", statePaused, func(c *ctx) bool { return !c.locked })
	m.AddTransition(statePaused, "play", stateRunning, nil)
	m.AddTransition(stateRunning, "finish", stateIdle, nil)

	return m, c
}

func TestMachineFiresRegisteredTransitions(t *testing.T) {
	m, c := buildMachine()
	if err := m.Init(c, stateIdle); err != nil {
		t.Fatalf("init: %v", err)
	}

	if !m.Fire(c, "play") {
		t.Fatal("expected play to fire from idle")
	}
	if m.Current() != stateRunning {
		t.Fatalf("expected running, got %d", m.Current())
	}
}

func TestMachineGuardBlocksTransition(t *testing.T) {
	m, c := buildMachine()
	m.Init(c, stateIdle)
	m.Fire(c, "play")

	c.locked = true
	if m.Fire(c, "pause") {
		t.Fatal("expected pause to be blocked while locked")
	}
	if m.Current() != stateRunning {
		t.Fatalf("expected to remain running, got %d", m.Current())
	}
}

func TestMachineUnknownTriggerNoop(t *testing.T) {
	m, c := buildMachine()
	m.Init(c, stateIdle)

	if m.Fire(c, "pause") {
		t.Fatal("expected pause to be rejected from idle")
	}
	if m.Current() != stateIdle {
		t.Fatalf("expected to remain idle, got %d", m.Current())
	}
}

func TestMachineCanFireDoesNotMutateState(t *testing.T) {
	m, c := buildMachine()
	m.Init(c, stateIdle)

	if !m.CanFire(c, "play") {
		t.Fatal("expected CanFire true for play from idle")
	}
	if m.Current() != stateIdle {
		t.Fatal("CanFire must not change state")
	}
}

func TestMachineRunsEnterActionsInOrder(t *testing.T) {
	m, c := buildMachine()
	m.Init(c, stateIdle)
	m.Fire(c, "play")
	m.Fire(c, "finish")

	want := []StateID{stateIdle, stateRunning, stateIdle}
	if len(c.entered) != len(want) {
		t.Fatalf("expected %v, got %v", want, c.entered)
	}
	for i, s := range want {
		if c.entered[i] != s {
			t.Fatalf("expected %v, got %v", want, c.entered)
		}
	}
}
