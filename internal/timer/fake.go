package timer

import "time"

// Fake is a test double that records Arm and Cancel calls.
// Tests drive firing by calling the callback under test directly.
type Fake struct {
	// Armed is true while the timer has a pending (fake) firing.
	Armed bool

	// LastDuration is the duration passed to the most recent Arm call.
	LastDuration time.Duration

	// ArmCalls contains every duration passed to Arm, in order.
	ArmCalls []time.Duration

	// CancelCalls counts calls to Cancel.
	CancelCalls int
}

// NewFake creates an unarmed Fake timer.
func NewFake() *Fake {
	return &Fake{}
}

// Arm records the requested duration.
func (f *Fake) Arm(d time.Duration) {
	f.Armed = true
	f.LastDuration = d
	f.ArmCalls = append(f.ArmCalls, d)
}

// Cancel records the cancellation.
func (f *Fake) Cancel() {
	f.Armed = false
	f.CancelCalls++
}

// Reset clears all recorded calls.
func (f *Fake) Reset() {
	f.Armed = false
	f.LastDuration = 0
	f.ArmCalls = nil
	f.CancelCalls = 0
}
