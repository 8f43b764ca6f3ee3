package sequence

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/animotion/animerr"
	"github.com/lixenwraith/animotion/clip"
	"github.com/lixenwraith/animotion/host"
	"github.com/lixenwraith/animotion/sched/core"
)

var beginningPos, _ = clip.ParsePosition("beginning", animerr.Location{})
var endPos, _ = clip.ParsePosition("end", animerr.Location{})

// Play commits a fresh scheduling plan and runs every group forward in
// order (spec.md §4.3 "Forward playback").
func (s *Sequence) Play(ctx context.Context) error {
	groups := s.prepareForwardRun()
	return s.runForwardGroups(ctx, groups)
}

// prepareForwardRun commits, latches a fresh fullyFinished future, and
// fires onStart.do — synchronously, so a caller that hands the
// remaining group loop to a goroutine (Finish's needsPlay path) can
// safely read s.fullyFinished immediately after this returns.
func (s *Sequence) prepareForwardRun() []group {
	s.commit()
	s.beginRun()
	s.fireHandlers(s.onStartDo)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups
}

func (s *Sequence) runForwardGroups(ctx context.Context, groups []group) error {
	for _, g := range groups {
		if err := s.playForwardGroup(ctx, g); err != nil {
			_ = s.PauseRoot()
			s.endRun(true)
			return err
		}
	}
	s.fireHandlers(s.onFinishDo)
	s.endRun(true)
	return nil
}

// Rewind commits a fresh scheduling plan and runs every group backward,
// last group first (spec.md §4.3 "Backward playback").
func (s *Sequence) Rewind(ctx context.Context) error {
	s.commit()
	s.beginRun()
	s.fireHandlers(s.onFinishUndo)

	s.mu.Lock()
	groups := s.groups
	s.mu.Unlock()

	for i := len(groups) - 1; i >= 0; i-- {
		if err := s.rewindGroup(ctx, groups[i]); err != nil {
			_ = s.PauseRoot()
			s.endRun(false)
			return err
		}
	}

	s.fireHandlers(s.onStartUndo)
	s.endRun(false)
	return nil
}

func (s *Sequence) beginRun() {
	s.mu.Lock()
	s.fullyFinished = clip.NewPromise()
	s.mu.Unlock()
	s.isRunning.Store(true)
	s.isPaused.Store(false)
	s.isFinished.Store(false)
}

func (s *Sequence) endRun(forward bool) {
	s.isRunning.Store(false)
	if forward {
		s.wasPlayed.Store(true)
		s.wasRewound.Store(false)
	} else {
		s.wasRewound.Store(true)
		s.wasPlayed.Store(false)
	}
	s.isFinished.Store(true)
	s.usingFinish.Store(false)

	s.mu.Lock()
	fin := s.fullyFinished
	s.mu.Unlock()
	if fin != nil {
		fin.Resolve()
	}
}

func (s *Sequence) fireHandlers(hooks []HandlerFn) {
	for _, h := range hooks {
		h(s)
	}
}

func (s *Sequence) trackInProgress(c *clip.Clip, in bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in {
		s.inProgress[c.ID] = c
	} else {
		delete(s.inProgress, c.ID)
	}
}

// playForwardGroup implements one group's forward execution step
// (spec.md §4.3 "Forward playback"):
//  1. pin activeFinishOrder against host timing drift with integrity
//     blocks, clip j awaiting clip j-1's end-of-active-phase;
//  2. launch clips in insertion order, each waiting for its
//     predecessor to reach the beginning of its active phase (i.e.,
//     finish its delay) before the next is launched; errgroup cancels
//     the group's remaining waits if any clip's play rejects.
func (s *Sequence) playForwardGroup(ctx context.Context, g group) error {
	for j := 1; j < len(g.activeFinishOrder); j++ {
		prev, cur := g.activeFinishOrder[j-1], g.activeFinishOrder[j]
		promise, err := prev.Animation().GenerateTimePromise(host.Forward, clip.PhaseActive, endPos)
		if err != nil {
			return err
		}
		if err := cur.Animation().AddIntegrityBlocks(host.Forward, clip.PhaseActive, endPos, []*clip.Promise{promise}); err != nil {
			return err
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, c := range g.clips {
		c := c
		var beginPromise *clip.Promise
		if i < len(g.clips)-1 {
			p, err := c.Animation().GenerateTimePromise(host.Forward, clip.PhaseActive, beginningPos)
			if err != nil {
				return err
			}
			beginPromise = p
		}

		s.trackInProgress(c, true)
		done := c.RunForward()
		eg.Go(func() error {
			defer s.trackInProgress(c, false)
			select {
			case <-done.Done():
				return done.Err()
			case <-egCtx.Done():
				return egCtx.Err()
			}
		})

		if beginPromise != nil {
			select {
			case <-beginPromise.Done():
			case <-egCtx.Done():
				return eg.Wait()
			}
		}
	}
	return eg.Wait()
}

// rewindGroup implements one group's backward execution step (spec.md
// §4.3 "Backward playback"): a pre-pass pins backwardActiveFinishOrder,
// then clips launch last-insertion-order-first, each subsequent clip
// waiting on the overlap-or-delay rule against the previously launched
// (already-rewinding) clip.
func (s *Sequence) rewindGroup(ctx context.Context, g group) error {
	for j := 1; j < len(g.backwardActiveFinishOrder); j++ {
		prev, cur := g.backwardActiveFinishOrder[j-1], g.backwardActiveFinishOrder[j]
		promise, err := prev.Animation().GenerateTimePromise(host.Backward, clip.PhaseActive, endPos)
		if err != nil {
			return err
		}
		if err := cur.Animation().AddIntegrityBlocks(host.Backward, clip.PhaseActive, endPos, []*clip.Promise{promise}); err != nil {
			return err
		}
	}

	order := make([]*clip.Clip, len(g.clips))
	for i, c := range g.clips {
		order[len(order)-1-i] = c
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for i, c := range order {
		c := c
		var waitPromise *clip.Promise
		if i > 0 {
			next := order[i-1]
			var pos clip.Position
			var phase clip.Phase
			if c.FullFinishTime() > next.FullStartTime() {
				offsetMS := c.FullFinishTime() - next.FullStartTime()
				// An offset at or past next's whole length waits for next's backward end.
				if offsetMS >= next.FullFinishTime()-next.FullStartTime() {
					pos, phase = endPos, clip.PhaseWhole
				} else {
					p, err := clip.ParsePosition(fmt.Sprintf("%d", offsetMS), animerr.Location{})
					if err != nil {
						return err
					}
					pos, phase = p, clip.PhaseWhole
				}
			} else {
				pos, phase = beginningPos, clip.PhaseDelay
			}
			p, err := next.Animation().GenerateTimePromise(host.Backward, phase, pos)
			if err != nil {
				return err
			}
			waitPromise = p
		}

		if waitPromise != nil {
			select {
			case <-waitPromise.Done():
			case <-egCtx.Done():
				return eg.Wait()
			}
		}

		s.trackInProgress(c, true)
		done := c.RunBackward()
		eg.Go(func() error {
			defer s.trackInProgress(c, false)
			select {
			case <-done.Done():
				return done.Err()
			case <-egCtx.Done():
				return egCtx.Err()
			}
		})
	}
	return eg.Wait()
}

// Pause broadcasts to the in-progress clip set only (spec.md §4.3
// "Pause / unpause / finish").
func (s *Sequence) Pause() {
	s.mu.Lock()
	inProgress := make([]*clip.Clip, 0, len(s.inProgress))
	for _, c := range s.inProgress {
		inProgress = append(inProgress, c)
	}
	s.mu.Unlock()
	for _, c := range inProgress {
		c.PauseAsChild()
	}
	s.isPaused.Store(true)
}

// Unpause broadcasts to the in-progress clip set only.
func (s *Sequence) Unpause() {
	s.mu.Lock()
	inProgress := make([]*clip.Clip, 0, len(s.inProgress))
	for _, c := range s.inProgress {
		inProgress = append(inProgress, c)
	}
	s.mu.Unlock()
	for _, c := range inProgress {
		c.UnpauseAsChild()
	}
	s.isPaused.Store(false)
}

// Finish marks usingFinish so later-starting clips skip naturally and
// tells every currently running clip to finish immediately. It is a
// no-op while paused or already finishing. If the sequence has not yet
// played, or was most recently rewound, Finish starts a forward play
// first so the flag is observed (spec.md §4.3 "Pause / unpause /
// finish"; DESIGN.md's resolution of the finish-during-rewind Open
// Question: a running rewind is finished to its end, as a running
// forward play is).
//
// Concurrent callers share the same fullyFinished future via
// singleflight, so only one caller actually drives the finish and every
// caller observes the same completion.
func (s *Sequence) Finish(ctx context.Context) error {
	if s.isPaused.Load() {
		return nil
	}
	if s.usingFinish.Load() {
		return s.waitFullyFinished()
	}

	_, err, _ := s.finishGroup.Do("finish", func() (any, error) {
		s.usingFinish.Store(true)
		defer s.usingFinish.Store(false)

		s.mu.Lock()
		inProgress := make([]*clip.Clip, 0, len(s.inProgress))
		for _, c := range s.inProgress {
			inProgress = append(inProgress, c)
		}
		s.mu.Unlock()

		needsPlay := !s.wasPlayed.Load() || s.wasRewound.Load()
		if !s.isRunning.Load() && needsPlay {
			groups := s.prepareForwardRun()
			core.Go(func() { _ = s.runForwardGroups(ctx, groups) })
		}
		for _, c := range inProgress {
			c.FinishAsChild()
		}
		return nil, s.waitFullyFinished()
	})
	return err
}

func (s *Sequence) waitFullyFinished() error {
	s.mu.Lock()
	fin := s.fullyFinished
	s.mu.Unlock()
	if fin == nil {
		return nil
	}
	<-fin.Done()
	return fin.Err()
}
