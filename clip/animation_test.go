package clip

import (
	"testing"
	"time"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clock"
	"github.com/lixenwraith/animotion/host"
)

func newTestAnimation(t *testing.T, timing host.Timing) (*Animation, *host.SimElement) {
	t.Helper()
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>")
	a := NewAnimation(el, timing, func() animerr.Location { return animerr.Location{} })
	a.Bind([]host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}, nil, host.CompositeReplace)
	return a, el
}

func TestGenerateTimePromiseResolvesAtBeginningOfActivePhase(t *testing.T) {
	a, _ := newTestAnimation(t, host.Timing{Delay: 20 * time.Millisecond, Duration: 40 * time.Millisecond})

	pos, err := ParsePosition("beginning", animerr.Location{})
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	p, err := a.GenerateTimePromise(host.Forward, PhaseActive, pos)
	if err != nil {
		t.Fatalf("GenerateTimePromise: %v", err)
	}

	a.Play()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("time promise did not resolve")
	}
}

func TestIntegrityBlockPausesUntilResolved(t *testing.T) {
	a, _ := newTestAnimation(t, host.Timing{Duration: 30 * time.Millisecond})

	gate := NewPromise()
	pos, _ := ParsePosition("50%", animerr.Location{})
	if err := a.AddIntegrityBlocks(host.Forward, PhaseActive, pos, []*Promise{gate}); err != nil {
		t.Fatalf("AddIntegrityBlocks: %v", err)
	}

	done := a.Play()

	select {
	case <-done:
		t.Fatal("animation finished before integrity block was resolved")
	case <-time.After(40 * time.Millisecond):
	}

	gate.Resolve()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation did not finish after integrity block resolved")
	}
}

func TestForwardMutatorReceivesIncreasingProgress(t *testing.T) {
	a, _ := newTestAnimation(t, host.Timing{Duration: 40 * time.Millisecond})

	var progresses []float64
	a.SetForwardMutator(func(p float64) { progresses = append(progresses, p) })

	done := a.Play()
	<-done

	if len(progresses) == 0 {
		t.Fatal("expected the mutator to be called at least once")
	}
	for i := 1; i < len(progresses); i++ {
		if progresses[i] < progresses[i-1] {
			t.Fatalf("progress went backwards: %v", progresses)
		}
	}
	if progresses[len(progresses)-1] != 1 {
		t.Fatalf("expected final progress 1, got %v", progresses[len(progresses)-1])
	}
}

func TestStallHookFiresOnlyWhileRoadblockPending(t *testing.T) {
	a, _ := newTestAnimation(t, host.Timing{Duration: 30 * time.Millisecond})

	var stalls int
	a.SetStallHook(func() { stalls++ })

	gate := NewPromise()
	gate.Resolve()
	pos, _ := ParsePosition("50%", animerr.Location{})
	if err := a.AddRoadblocks(host.Forward, PhaseActive, pos, []*Promise{gate}); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}

	done := a.Play()
	<-done

	if stalls != 0 {
		t.Fatalf("expected no stall callback for an already-resolved roadblock, got %d", stalls)
	}
}

func TestOnFinishHooksFireInPhaseOrder(t *testing.T) {
	a, _ := newTestAnimation(t, host.Timing{Delay: 10 * time.Millisecond, Duration: 10 * time.Millisecond, EndDelay: 10 * time.Millisecond})

	var order []string
	a.OnDelayFinish(func(host.Direction) { order = append(order, "delay") })
	a.OnActiveFinish(func(host.Direction) { order = append(order, "active") })
	a.OnEndDelayFinish(func(host.Direction) { order = append(order, "endDelay") })

	done := a.Play()
	<-done

	if len(order) != 3 || order[0] != "delay" || order[1] != "active" || order[2] != "endDelay" {
		t.Fatalf("expected [delay active endDelay], got %v", order)
	}
}
