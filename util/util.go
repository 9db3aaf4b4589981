// Package util holds small helpers shared by the commands.
package util

import "time"

// SkipThrottler allows an action at most once per interval, skipping calls in between.
type SkipThrottler struct {
	d    time.Duration
	last time.Time
}

func NewSkipThrottler(d time.Duration) *SkipThrottler {
	return &SkipThrottler{d: d}
}

// Ok reports whether an interval has passed since the last allowed call.
// The first call is always allowed.
func (tt *SkipThrottler) Ok() bool {
	now := time.Now()
	if !tt.last.IsZero() && now.Before(tt.last.Add(tt.d)) {
		return false
	}

	tt.last = now
	return true
}
