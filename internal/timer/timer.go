// Package timer provides a one-shot timer capability with
// cancel-and-reschedule semantics: arming a timer that is already running
// replaces the pending firing. The real implementation delivers firings on
// a channel so the caller can consume them from a single dispatch loop.
// The fake implementation records arm/cancel calls for tests.
package timer

import "time"

// Timer is a one-shot timer. Arm replaces any pending firing.
type Timer interface {
	// Arm schedules a firing after d, replacing any pending firing.
	Arm(d time.Duration)

	// Cancel discards any pending firing.
	Cancel()
}
