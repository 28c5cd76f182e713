package quadcast

import (
	"math"
	"time"
)

// Animator turns wall-clock time between frames into a rotation angle.
//
// The first call to Advance sets the baseline and returns exactly zero.
type Animator struct {
	now    func() time.Time
	smooth bool

	last    time.Time
	started bool
}

// NewAnimator creates an Animator reading time from now.
// If smooth is false, only the millisecond component of the elapsed time
// (0..999) contributes, so a 1.2 s gap rotates as far as a 0.2 s gap.
func NewAnimator(now func() time.Time, smooth bool) *Animator {
	if now == nil {
		now = time.Now
	}
	return &Animator{now: now, smooth: smooth}
}

// Advance returns the angle in radians to rotate by for this frame and
// moves the baseline to the current time.
func (a *Animator) Advance() float64 {
	t := a.now()
	if !a.started {
		a.started = true
		a.last = t
		return 0
	}
	elapsed := t.Sub(a.last)
	a.last = t
	return angleFor(elapsed, a.smooth)
}

// angleFor maps an elapsed duration to radians: 1000 ms is pi.
func angleFor(elapsed time.Duration, smooth bool) float64 {
	if elapsed <= 0 {
		return 0
	}
	if smooth {
		return elapsed.Seconds() * math.Pi
	}
	ms := (elapsed / time.Millisecond) % 1000
	return float64(ms) / 1000 * math.Pi
}
