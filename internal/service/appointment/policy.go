package appointment

import (
	"time"

	"github.com/jwalitptl/booking-api/pkg/clock"
)

// CancellationPolicy decides whether an appointment may still be cancelled.
type CancellationPolicy struct {
	// WindowHours is how long before the appointment cancelling closes.
	WindowHours int
}

// Deadline is the last instant, exclusive, at which date can be cancelled.
func (p CancellationPolicy) Deadline(date time.Time) time.Time {
	return clock.AddHours(date, -p.WindowHours)
}

// Allows reports whether now is strictly before the deadline.
func (p CancellationPolicy) Allows(date, now time.Time) bool {
	return p.Deadline(date).After(now)
}
