// Package scheduler provides the timer abstraction the capture loop re-arms
// itself with and the drift-corrected wait computation.
package scheduler

import "time"

// FireGuard is added to every computed wait so a timer never fires just
// before the interval boundary it was aimed at.
const FireGuard = time.Millisecond

// Timer is the cancellation handle of a scheduled callback
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock supplies wall-clock time and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns the Clock backed by the time package
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NextWait returns how long to wait for the next capture so that captures
// stay on the grid start, start+interval, start+2*interval, ... regardless of
// how late the current one fired.
func NextWait(start, now time.Time, interval time.Duration) time.Duration {
	if interval <= 0 {
		return 0
	}
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	return interval - elapsed%interval + FireGuard
}
