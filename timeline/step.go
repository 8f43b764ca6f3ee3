package timeline

import (
	"context"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/sequence"
)

// Step plays (forward) or rewinds (backward) the sequence at the
// current edge of loadedSeqIndex, moves the index, then follows the
// autoplay chain: repeats while the just-completed sequence's
// autoplaysNextSequence, or the newly-loaded (next-to-run) sequence's
// autoplays, holds. Stepping is rejected at the edges and while the
// timeline is already animating, jumping, or paused (spec.md §4.4
// "Step").
func (t *Timeline) Step(ctx context.Context, dir Direction) error {
	t.mu.Lock()
	if !t.machine.Fire(t, "step") {
		t.mu.Unlock()
		return &animerr.LockedOperationError{Loc: t.locatorLocked(), Op: "step"}
	}
	t.currentDirection = dir
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.machine.Fire(t, "doneStep")
		t.mu.Unlock()
	}()

	for {
		completed, err := t.stepOnce(ctx, dir)
		if err != nil {
			return err
		}
		if completed == nil {
			return nil
		}

		var loaded *sequence.Sequence
		if dir == DirectionForward {
			loaded = t.sequenceAt(t.LoadedSeqIndex())
		} else {
			loaded = t.sequenceAt(t.LoadedSeqIndex() - 1)
		}

		chain := completed.AutoplaysNextSequence() || (loaded != nil && loaded.Autoplays())
		if !chain {
			return nil
		}
	}
}

// stepOnce performs exactly one play/rewind and index move. Returns the
// sequence that just ran, or nil if stepping is rejected at an edge
// (loadedSeqIndex already at 0 or numSequences).
func (t *Timeline) stepOnce(ctx context.Context, dir Direction) (*sequence.Sequence, error) {
	t.mu.Lock()
	idx := t.loadedSeqIndex
	var target *sequence.Sequence
	switch dir {
	case DirectionForward:
		if idx >= len(t.sequences) {
			t.mu.Unlock()
			return nil, nil
		}
		target = t.sequences[idx]
	case DirectionBackward:
		if idx <= 0 {
			t.mu.Unlock()
			return nil, nil
		}
		target = t.sequences[idx-1]
	}
	t.mu.Unlock()

	t.trackInProgress(target, true)
	var err error
	if dir == DirectionForward {
		err = target.Play(ctx)
	} else {
		err = target.Rewind(ctx)
	}
	t.trackInProgress(target, false)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if dir == DirectionForward {
		t.loadedSeqIndex++
	} else {
		t.loadedSeqIndex--
	}
	idx = t.loadedSeqIndex
	hooks := append([]func(int){}, t.onStep...)
	t.mu.Unlock()
	for _, fn := range hooks {
		fn(idx)
	}

	return target, nil
}

func (t *Timeline) sequenceAt(idx int) *sequence.Sequence {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.sequences) {
		return nil
	}
	return t.sequences[idx]
}
