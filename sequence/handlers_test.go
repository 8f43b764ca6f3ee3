package sequence

import (
	"context"
	"testing"
	"time"

	"github.com/lixenwraith/animotion/clip/category"
)

// TestHandlerFiringOrder pins spec.md §4.3 "Handlers": onStart.do fires
// after commit/before launch, onFinish.do after the last group
// completes; onFinish.undo at the beginning of rewind, onStart.undo at
// the end.
func TestHandlerFiringOrder(t *testing.T) {
	c := newPlaybackTestClip(t, category.Emphasis, 10*time.Millisecond)
	s := New("", "", Config{})
	s.AddClip(c)

	var order []string
	s.OnStart(func(*Sequence) { order = append(order, "start.do") }, func(*Sequence) { order = append(order, "start.undo") })
	s.OnFinish(func(*Sequence) { order = append(order, "finish.do") }, func(*Sequence) { order = append(order, "finish.undo") })

	if err := s.Play(context.Background()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(order) != 2 || order[0] != "start.do" || order[1] != "finish.do" {
		t.Fatalf("after Play, order = %v, want [start.do finish.do]", order)
	}

	order = nil
	if err := s.Rewind(context.Background()); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	if len(order) != 2 || order[0] != "finish.undo" || order[1] != "start.undo" {
		t.Fatalf("after Rewind, order = %v, want [finish.undo start.undo]", order)
	}
}
