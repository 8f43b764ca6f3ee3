package clip

import (
	"testing"
	"time"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clip/category"
	"github.com/lixenwraith/animotion/clock"
	"github.com/lixenwraith/animotion/host"
)

func newTestClip(t *testing.T, cat category.Tag, cfg Config) (*Clip, *host.SimElement) {
	t.Helper()
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>")
	c, err := New(cat, el, "fade-in", nil, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	entry := BankEntry{
		Shape: ShapeKeyframes,
		Keyframes: func(c *Clip, args []any) ([]host.Keyframe, []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "0"}}, {Properties: map[string]any{"opacity": "1"}}}, nil
		},
	}
	if err := c.BindGenerator(entry); err != nil {
		t.Fatalf("BindGenerator: %v", err)
	}
	return c, el
}

func TestEntranceRequiresHiddenClass(t *testing.T) {
	c, _ := newTestClip(t, category.Entrance, Config{})
	if _, err := c.Play(); err == nil {
		t.Fatal("expected InvalidEntranceAttempt for a not-hidden element")
	}
}

// TestPhaseHookErrorPausesStandaloneClip pins spec.md §4.2
// "Error-routing"/§7 "Propagation policy" for a parentless clip: a
// phase-hook error (here, InvalidEntranceAttempt from an Entrance
// played on a not-hidden element) must leave the clip itself paused,
// since it is its own hierarchy root.
func TestPhaseHookErrorPausesStandaloneClip(t *testing.T) {
	c, _ := newTestClip(t, category.Entrance, Config{})
	if _, err := c.Play(); err == nil {
		t.Fatal("expected InvalidEntranceAttempt for a not-hidden element")
	}
	if !c.IsPaused() {
		t.Fatal("expected the clip left paused after a start-hook error")
	}
}

// TestPhaseHookErrorPausesParentRoot pins the same propagation for a
// clip with a parent: the error must call PauseRoot on the parent
// instead of pausing the clip directly (Clip.Pause rejects once a
// parent is set).
func TestPhaseHookErrorPausesParentRoot(t *testing.T) {
	c, _ := newTestClip(t, category.Entrance, Config{})
	called := false
	c.SetParent(fakeParent{pauseRootCalled: &called})

	// RunForward is the engine entry point an owning sequence uses (not
	// ownership-checked); Play itself is rejected once a parent is set.
	_ = c.RunForward()

	if !called {
		t.Fatal("expected PauseRoot called on the parent after a start-hook error")
	}
}

func TestEntranceRemovesHideClassOnForwardStart(t *testing.T) {
	c, el := newTestClip(t, category.Entrance, Config{})
	el.AddClass(category.DisplayNoneClass)

	done, err := c.Play()
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if el.HasClass(category.DisplayNoneClass) {
		t.Fatal("expected hide class removed at forward-start")
	}

	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("clip did not finish")
	}
	if err := done.Err(); err != nil {
		t.Fatalf("play rejected: %v", err)
	}
}

func TestEntranceRestoresHideClassOnBackwardFinish(t *testing.T) {
	c, el := newTestClip(t, category.Entrance, Config{})
	el.AddClass(category.DisplayNoneClass)

	done, _ := c.Play()
	<-done.Done()

	back, err := c.Rewind()
	if err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	<-back.Done()

	if !el.HasClass(category.DisplayNoneClass) {
		t.Fatal("expected hide class restored at backward-finish")
	}
}

func TestChildPlaybackErrorWhenParentSet(t *testing.T) {
	c, _ := newTestClip(t, category.Emphasis, Config{})
	c.SetParent(fakeParent{})

	if _, err := c.Play(); err == nil {
		t.Fatal("expected ChildPlaybackError for a clip with a parent")
	}
}

func TestMotionDefaultsToAccumulateComposite(t *testing.T) {
	c, _ := newTestClip(t, category.Motion, Config{})
	if *c.cfg.Composite != host.CompositeAccumulate {
		t.Fatalf("expected accumulate composite, got %v", *c.cfg.Composite)
	}
}

func TestSetFullStartTimeDerivesScheduledTimes(t *testing.T) {
	delay := 100 * time.Millisecond
	dur := 500 * time.Millisecond
	endDelay := 50 * time.Millisecond
	c, _ := newTestClip(t, category.Emphasis, Config{Delay: &delay, Duration: &dur, EndDelay: &endDelay})

	c.SetFullStartTime(1000)
	if c.FullStartTime() != 1000 {
		t.Fatalf("expected fullStartTime 1000, got %d", c.FullStartTime())
	}
	if c.ActiveStartTime() != 1100 {
		t.Fatalf("expected activeStartTime 1100, got %d", c.ActiveStartTime())
	}
	if c.ActiveFinishTime() != 1600 {
		t.Fatalf("expected activeFinishTime 1600, got %d", c.ActiveFinishTime())
	}
	if c.FullFinishTime() != 1650 {
		t.Fatalf("expected fullFinishTime 1650, got %d", c.FullFinishTime())
	}
}

func TestComputeNowFalseRunsGeneratorPerDirection(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>")
	computeNow := false
	c, err := New(category.Emphasis, el, "pulse", nil, Config{ComputeNow: &computeNow})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var forwardCalls, backwardCalls int
	entry := BankEntry{
		Shape: ShapeKeyframeGenerators,
		KeyframeGenerator: func(c *Clip, args []any) (forward, backward func() []host.Keyframe) {
			forward = func() []host.Keyframe {
				forwardCalls++
				return []host.Keyframe{{Properties: map[string]any{"opacity": "0"}}}
			}
			backward = func() []host.Keyframe {
				backwardCalls++
				return []host.Keyframe{{Properties: map[string]any{"opacity": "1"}}}
			}
			return forward, backward
		},
	}
	if err := c.BindGenerator(entry); err != nil {
		t.Fatalf("BindGenerator: %v", err)
	}
	if forwardCalls != 0 || backwardCalls != 0 {
		t.Fatalf("expected no generator calls before play, got forward=%d backward=%d", forwardCalls, backwardCalls)
	}

	done, err := c.Play()
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	<-done.Done()
	if forwardCalls != 1 || backwardCalls != 0 {
		t.Fatalf("after forward play: forward=%d backward=%d, want 1/0", forwardCalls, backwardCalls)
	}

	back, err := c.Rewind()
	if err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	<-back.Done()
	if forwardCalls != 1 || backwardCalls != 1 {
		t.Fatalf("after rewind: forward=%d backward=%d, want 1/1", forwardCalls, backwardCalls)
	}
}

func TestComputeNowFalseBackwardFallsBackToForwardFrames(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := host.NewSimElement(src, "<div>")
	computeNow := false
	c, err := New(category.Emphasis, el, "pulse", nil, Config{ComputeNow: &computeNow})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entry := BankEntry{
		Shape: ShapeKeyframes,
		Keyframes: func(c *Clip, args []any) (forward, backward []host.Keyframe) {
			return []host.Keyframe{{Properties: map[string]any{"opacity": "0"}}}, nil
		},
	}
	if err := c.BindGenerator(entry); err != nil {
		t.Fatalf("BindGenerator: %v", err)
	}

	done, err := c.Play()
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	<-done.Done()

	back, err := c.Rewind()
	if err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	<-back.Done()
	if back.Err() != nil {
		t.Fatalf("rewind rejected: %v", back.Err())
	}
}

func TestOnStallFiresWhenRoadblockIsUnresolved(t *testing.T) {
	c, _ := newTestClip(t, category.Emphasis, Config{})

	var stalled bool
	c.OnStall(func() { stalled = true })

	pending := NewPromise()
	if err := c.anim.AddRoadblocks(host.Forward, PhaseActive, Position{}, []*Promise{pending}); err != nil {
		t.Fatalf("AddRoadblocks: %v", err)
	}

	done, err := c.Play()
	if err != nil {
		t.Fatalf("Play: %v", err)
	}

	time.AfterFunc(50*time.Millisecond, pending.Resolve)
	select {
	case <-done.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("clip did not finish after roadblock resolved")
	}

	if !stalled {
		t.Fatal("expected OnStall hook to fire while the roadblock was unresolved")
	}
}

type fakeParent struct {
	pauseRootCalled *bool
}

func (fakeParent) SkippingOn() bool          { return false }
func (fakeParent) CompoundedRate() float64   { return 1 }
func (fakeParent) Locator() animerr.Location { return animerr.Location{} }

func (p fakeParent) PauseRoot() error {
	if p.pauseRootCalled != nil {
		*p.pauseRootCalled = true
	}
	return nil
}
