package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// PausableClock provides pausable, rate-scaled playback time. One
// PausableClock backs one clip.Animation's sense of "its own current
// time" (spec.md §4.1) — pause freezes it, SetRate scales how fast it
// advances relative to the real source it reads from, matching the
// teacher's engine.PausableClock pause-duration bookkeeping but adding
// rate scaling for compounded playback rate (spec.md §4.4).
type PausableClock struct {
	mu sync.RWMutex

	source Source

	realStartTime time.Time // when the clock was created or last rebased
	playStartTime time.Time // playback-time epoch at realStartTime

	rate float64 // current playback rate; read/written under mu

	isPaused       atomic.Bool
	pauseStartTime time.Time
}

// NewPausableClock creates a clock reading from source, running at rate 1.
func NewPausableClock(source Source) *PausableClock {
	now := source.Now()
	return &PausableClock{
		source:        source,
		realStartTime: now,
		playStartTime: now,
		rate:          1,
	}
}

// Now returns the current playback time, accounting for pauses and the
// rate applied since the last rebase.
func (pc *PausableClock) Now() time.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.nowLocked()
}

func (pc *PausableClock) nowLocked() time.Time {
	if pc.isPaused.Load() {
		elapsed := pc.pauseStartTime.Sub(pc.realStartTime)
		return pc.playStartTime.Add(scaleDuration(elapsed, pc.rate))
	}
	elapsed := pc.source.Now().Sub(pc.realStartTime)
	return pc.playStartTime.Add(scaleDuration(elapsed, pc.rate))
}

// Pause freezes playback time at its current value.
func (pc *PausableClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		pc.pauseStartTime = pc.source.Now()
		pc.mu.Unlock()
	}
}

// Resume continues playback time from where it was paused.
func (pc *PausableClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		// Rebase so elapsed-since-realStartTime excludes the pause.
		pc.playStartTime = pc.nowLockedAssumingPaused()
		pc.realStartTime = pc.source.Now()
		pc.mu.Unlock()
	}
}

// nowLockedAssumingPaused must be called with mu held, while isPaused is
// still true (i.e. from within Resume before the CAS flips it back).
func (pc *PausableClock) nowLockedAssumingPaused() time.Time {
	elapsed := pc.pauseStartTime.Sub(pc.realStartTime)
	return pc.playStartTime.Add(scaleDuration(elapsed, pc.rate))
}

// IsPaused reports whether the clock is currently paused.
func (pc *PausableClock) IsPaused() bool { return pc.isPaused.Load() }

// SetRate changes the playback rate, rebasing so that time already
// elapsed is preserved (no discontinuity in Now() at the instant of the
// change, matching "setPlaybackRate(r) ... without altering output
// frames" from spec.md §8).
func (pc *PausableClock) SetRate(rate float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	current := pc.nowLocked()
	now := pc.source.Now()
	pc.rate = rate
	pc.playStartTime = current
	pc.realStartTime = now
	if pc.isPaused.Load() {
		pc.pauseStartTime = now
	}
}

// Rate returns the current playback rate.
func (pc *PausableClock) Rate() float64 {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.rate
}

func scaleDuration(d time.Duration, rate float64) time.Duration {
	if rate == 1 {
		return d
	}
	return time.Duration(float64(d) * rate)
}
