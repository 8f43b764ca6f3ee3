package timeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/sequence"
)

// SearchDirection is one of the four tag-search directions (spec.md
// §4.4 "Jump").
type SearchDirection int

const (
	SearchForward SearchDirection = iota
	SearchBackward
	SearchForwardFromBeginning
	SearchBackwardFromEnd
)

// AutoplayDetection selects which autoplay predicates a jump continues
// stepping against after reaching its target (spec.md §4.4 "Jump").
type AutoplayDetection int

const (
	AutoplayNone AutoplayDetection = iota
	AutoplayForward
	AutoplayBackward
)

// JumpToSequenceTag locates the target index by tag match (exact or
// regex) searched in the given direction from searchOffset, lands at
// targetOffset past it, and jumps there (spec.md §4.4 "Jump").
func (t *Timeline) JumpToSequenceTag(ctx context.Context, tag string, exact bool, dir SearchDirection, searchOffset, targetOffset int, autoplay AutoplayDetection) error {
	idx, err := t.findTagIndex(tag, exact, dir, searchOffset)
	if err != nil {
		return err
	}
	return t.jumpTo(ctx, idx+targetOffset, autoplay)
}

func (t *Timeline) findTagIndex(tag string, exact bool, dir SearchDirection, searchOffset int) (int, error) {
	seqs := t.Sequences()
	loaded := t.LoadedSeqIndex()

	var re *regexp.Regexp
	if !exact {
		re, _ = regexp.Compile(tag)
	}
	matches := func(s *sequence.Sequence) bool {
		if exact || re == nil {
			return s.Tag == tag
		}
		return re.MatchString(s.Tag)
	}

	switch dir {
	case SearchForward, SearchForwardFromBeginning:
		start := searchOffset
		if dir == SearchForward {
			start += loaded
		}
		if start < 0 {
			start = 0
		}
		for i := start; i < len(seqs); i++ {
			if matches(seqs[i]) {
				return i, nil
			}
		}
	case SearchBackward, SearchBackwardFromEnd:
		start := len(seqs) - 1 + searchOffset
		if dir == SearchBackward {
			start = loaded - 1 + searchOffset
		}
		if start > len(seqs)-1 {
			start = len(seqs) - 1
		}
		for i := start; i >= 0; i-- {
			if matches(seqs[i]) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("timeline: no sequence matches tag %q: %s", tag, t.Locator())
}

// JumpToPosition jumps to "beginning", "end", or an integer
// loadedSeqIndex literal (spec.md §4.4 "Jump", §6 "Time-position
// literal syntax").
func (t *Timeline) JumpToPosition(ctx context.Context, pos string, autoplay AutoplayDetection) error {
	target, err := t.resolvePosition(pos)
	if err != nil {
		return err
	}
	return t.jumpTo(ctx, target, autoplay)
}

func (t *Timeline) resolvePosition(pos string) (int, error) {
	switch pos {
	case "beginning":
		return 0, nil
	case "end":
		return t.NumSequences(), nil
	default:
		n, err := strconv.Atoi(pos)
		if err != nil {
			return 0, fmt.Errorf("timeline: invalid jump position %q", pos)
		}
		return n, nil
	}
}

// jumpTo performs the full jump protocol (spec.md §4.4 "Jump"):
// out-of-bounds check before any movement; unpause-if-paused
// (remembered) and skipping visual state on; repeated stepOnce calls
// without autoplay consultation until the target is reached; then
// autoplay-continuation per autoplay; restore pause/skipping state at
// the end. Re-entrant jumps (already jumping or animating) are
// rejected.
func (t *Timeline) jumpTo(ctx context.Context, target int, autoplay AutoplayDetection) error {
	t.mu.Lock()
	if target < 0 || target > len(t.sequences) {
		loc := t.locatorLocked()
		n := len(t.sequences)
		t.mu.Unlock()
		return fmt.Errorf("timeline: jump target %d out of bounds [0, %d]: %s", target, n, loc)
	}
	wasPaused := t.machine.Current() == statePaused
	t.mu.Unlock()

	if wasPaused {
		if err := t.Unpause(); err != nil {
			return err
		}
	}

	t.mu.Lock()
	if !t.machine.Fire(t, "jump") {
		t.mu.Unlock()
		if wasPaused {
			_ = t.Pause()
		}
		return &animerr.LockedOperationError{Loc: t.locatorLocked(), Op: "jumpTo"}
	}
	wasSkipping := t.skippingOn
	t.skippingOn = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.skippingOn = wasSkipping
		t.machine.Fire(t, "doneJump")
		t.mu.Unlock()
		if wasPaused {
			_ = t.Pause()
		}
	}()

	for t.LoadedSeqIndex() != target {
		dir := DirectionForward
		if target < t.LoadedSeqIndex() {
			dir = DirectionBackward
		}
		if _, err := t.stepOnce(ctx, dir); err != nil {
			return err
		}
	}

	t.mu.Lock()
	idx := t.loadedSeqIndex
	hooks := append([]func(int){}, t.onJump...)
	t.mu.Unlock()
	for _, fn := range hooks {
		fn(idx)
	}

	switch autoplay {
	case AutoplayForward:
		return t.autoplayContinue(ctx, DirectionForward)
	case AutoplayBackward:
		return t.autoplayContinue(ctx, DirectionBackward)
	default:
		return nil
	}
}

func (t *Timeline) autoplayContinue(ctx context.Context, dir Direction) error {
	for {
		completed, err := t.stepOnce(ctx, dir)
		if err != nil {
			return err
		}
		if completed == nil {
			return nil
		}
		var next *sequence.Sequence
		if dir == DirectionForward {
			next = t.sequenceAt(t.LoadedSeqIndex())
		} else {
			next = t.sequenceAt(t.LoadedSeqIndex() - 1)
		}
		if !(completed.AutoplaysNextSequence() || (next != nil && next.Autoplays())) {
			return nil
		}
	}
}
