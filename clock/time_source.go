// Package clock provides the scheduler's notion of time: a monotonic real
// clock for wall-clock bookkeeping, and a PausableClock that honors pause
// and playback-rate changes (adapted from the teacher's
// engine.PausableClock / engine.TimeProvider pair). The PausableClock
// drives host's simulated animations; the timeline, sequence and clip
// packages do not read it.
package clock

import "time"

// Source provides the current time. RealSource wraps time.Now; MockSource
// gives tests a controllable clock.
type Source interface {
	Now() time.Time
}

// RealSource is a monotonic system time source.
type RealSource struct{}

// NewRealSource creates a monotonic real-time source.
func NewRealSource() *RealSource { return &RealSource{} }

// Now returns the current time with a monotonic clock reading.
func (r *RealSource) Now() time.Time { return time.Now() }
