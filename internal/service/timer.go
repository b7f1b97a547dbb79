package service

import (
	"math"
	"time"
)

// CurrentTimerValue recomputes a timer's remaining seconds from its two
// persisted fields. A nil playedAt means paused and the value is
// lastValue verbatim; otherwise the wall-clock elapsed time since
// playedAt is subtracted and the result clamped at zero. There is no
// ticking process anywhere: timer truth lives in these two fields.
func CurrentTimerValue(lastValue int, playedAt *time.Time, now time.Time) int {
	value := float64(lastValue)
	if playedAt != nil {
		value -= now.Sub(*playedAt).Seconds()
	}
	return int(math.Round(math.Max(value, 0)))
}
