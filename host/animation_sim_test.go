//go:build !(js && wasm)

package host

import (
	"testing"
	"time"

	"github.com/lixenwraith/animotion/clock"
)

func TestSimAnimationFinishesAfterDuration(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	anim := el.Animate(nil, Timing{Duration: 30 * time.Millisecond}, CompositeReplace)

	done := make(chan struct{})
	anim.OnFinish(func() { close(done) })
	anim.Play()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation did not finish within a real second of wall time")
	}
}

func TestSimAnimationPauseFreezesCurrentTime(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	anim := el.Animate(nil, Timing{Duration: time.Second}, CompositeReplace)

	anim.Play()
	src.Advance(300 * time.Millisecond)
	anim.Pause()

	before := anim.CurrentTime()
	src.Advance(300 * time.Millisecond)
	after := anim.CurrentTime()

	if before != after {
		t.Fatalf("expected current time frozen at %v, got %v", before, after)
	}
	if before < 299*time.Millisecond || before > 301*time.Millisecond {
		t.Fatalf("expected ~300ms, got %v", before)
	}
}

func TestSimAnimationSetPlaybackRateScalesRemainingTime(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	anim := el.Animate(nil, Timing{Duration: 100 * time.Millisecond}, CompositeReplace)

	anim.Play()
	src.Advance(20 * time.Millisecond)
	anim.SetPlaybackRate(2)

	done := make(chan struct{})
	anim.OnFinish(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("animation did not finish within a real second of wall time")
	}

	current := anim.CurrentTime()
	if current != 100*time.Millisecond {
		t.Fatalf("expected CurrentTime pinned at total duration after finish, got %v", current)
	}
}

func TestSimAnimationFinishIsIdempotentAndFiresOnce(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	anim := el.Animate(nil, Timing{Duration: 100 * time.Millisecond}, CompositeReplace)

	count := 0
	anim.OnFinish(func() { count++ })
	anim.Finish()
	anim.Finish()

	if count != 1 {
		t.Fatalf("expected OnFinish to fire exactly once, got %d", count)
	}
}

func TestSimAnimationOnFinishAfterAlreadyFinishedFiresImmediately(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	anim := el.Animate(nil, Timing{Duration: 100 * time.Millisecond}, CompositeReplace)
	anim.Finish()

	fired := false
	anim.OnFinish(func() { fired = true })
	if !fired {
		t.Fatal("expected OnFinish to fire immediately for an already-finished animation")
	}
}

func TestSimElementCommitStylesFailsWhenNotRendered(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")
	el.SetRendered(false)

	if err := el.CommitStyles(); err == nil {
		t.Fatal("expected CommitStyles to error for an unrendered element")
	}
}

func TestSimElementClassToggle(t *testing.T) {
	src := clock.NewMockSource(time.Unix(0, 0))
	el := NewSimElement(src, "<div>")

	el.AddClass("visible")
	if !el.HasClass("visible") {
		t.Fatal("expected class to be present after AddClass")
	}
	el.RemoveClass("visible")
	if el.HasClass("visible") {
		t.Fatal("expected class to be absent after RemoveClass")
	}
}
