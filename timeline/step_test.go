package timeline

import (
	"context"
	"testing"

	"github.com/lixenwraith/animotion/sequence"
)

// TestStepFollowsAutoplayChain pins spec.md §8 scenario 3: seq1
// (autoplaysNextSequence) chains into seq2, and seq2's non-chaining is
// overridden by seq3.autoplays, so a single forward step from index 0
// plays all three sequences.
func TestStepFollowsAutoplayChain(t *testing.T) {
	tl := New(Config{TimelineName: "demo"})

	seq1 := sequence.New("", "", sequence.Config{AutoplaysNextSequence: true})
	seq2 := sequence.New("", "", sequence.Config{})
	seq3 := sequence.New("", "", sequence.Config{Autoplays: true})

	for _, s := range []*sequence.Sequence{seq1, seq2, seq3} {
		if err := tl.AddSequence(s); err != nil {
			t.Fatalf("AddSequence: %v", err)
		}
	}

	if err := tl.Step(context.Background(), DirectionForward); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := tl.LoadedSeqIndex(); got != 3 {
		t.Fatalf("LoadedSeqIndex = %d, want 3", got)
	}
}

// TestStepRejectedAtForwardEdge verifies stepping forward past the last
// sequence is a no-op rather than an error (spec.md §4.4 "Stepping is
// rejected at the edges").
func TestStepRejectedAtForwardEdge(t *testing.T) {
	tl := New(Config{TimelineName: "demo"})
	seq1 := sequence.New("", "", sequence.Config{})
	if err := tl.AddSequence(seq1); err != nil {
		t.Fatalf("AddSequence: %v", err)
	}

	if err := tl.Step(context.Background(), DirectionForward); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := tl.LoadedSeqIndex(); got != 1 {
		t.Fatalf("LoadedSeqIndex = %d, want 1", got)
	}

	if err := tl.Step(context.Background(), DirectionForward); err != nil {
		t.Fatalf("second Step: %v", err)
	}
	if got := tl.LoadedSeqIndex(); got != 1 {
		t.Fatalf("LoadedSeqIndex after edge step = %d, want 1 (no-op)", got)
	}
}

// TestStepForwardThenBackwardReturnsToPriorIndex pins the universal
// property from spec.md §8: no-autoplay step(forward) then
// step(backward) restores loadedSeqIndex.
func TestStepForwardThenBackwardReturnsToPriorIndex(t *testing.T) {
	tl := New(Config{TimelineName: "demo"})
	for i := 0; i < 3; i++ {
		if err := tl.AddSequence(sequence.New("", "", sequence.Config{})); err != nil {
			t.Fatalf("AddSequence: %v", err)
		}
	}

	before := tl.LoadedSeqIndex()
	if err := tl.Step(context.Background(), DirectionForward); err != nil {
		t.Fatalf("Step forward: %v", err)
	}
	if err := tl.Step(context.Background(), DirectionBackward); err != nil {
		t.Fatalf("Step backward: %v", err)
	}
	if got := tl.LoadedSeqIndex(); got != before {
		t.Fatalf("LoadedSeqIndex = %d, want %d", got, before)
	}
}
