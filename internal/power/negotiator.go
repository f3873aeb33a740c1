// Package power implements low-power sleep negotiation for the sensor.
// The host power manager asks how long the device may suspend; the
// negotiator bounds the answer by the cadence timer so the device wakes
// in time to publish while presence is active. The whole package is only
// wired in when low-power mode is enabled; the cadence engine does not
// depend on it.
package power

import "time"

// Mode is the negotiator's two-value state flag.
type Mode int

const (
	NotIdle Mode = iota
	Idle
)

const (
	// SleepCeiling caps any granted sleep duration.
	SleepCeiling = 60 * time.Second

	// DeepSleepThreshold is the grant length above which a full
	// shutdown sleep saves more power than a light suspend.
	DeepSleepThreshold = 30 * time.Minute
)

// Negotiator answers the host power-management queries.
type Negotiator struct {
	mode      Mode
	interval  func() time.Duration // currently armed cadence interval, 0 = idle
	detected  func() bool          // debounced presence state
	deepSleep func(d time.Duration)
}

// New creates a Negotiator. interval and detected read live scheduler and
// presence state; deepSleep enters full-shutdown sleep and may be nil.
func New(interval func() time.Duration, detected func() bool, deepSleep func(time.Duration)) *Negotiator {
	return &Negotiator{
		interval:  interval,
		detected:  detected,
		deepSleep: deepSleep,
	}
}

// MaxSleepAllowed clamps a requested sleep duration to the ceiling and,
// while presence is detected, to the armed cadence interval: the device
// must wake in time to meet cadence while presence is active.
func (n *Negotiator) MaxSleepAllowed(requested time.Duration) time.Duration {
	if requested > SleepCeiling {
		requested = SleepCeiling
	}
	if iv := n.interval(); iv != 0 {
		if n.detected() && iv < requested {
			requested = iv
		}
	}
	return requested
}

// Sleep handles a sleep grant from the host. Short grants leave the
// device in light suspend (mode Idle); grants past the threshold are
// handed to full-shutdown sleep. The grant arrives unclamped from the
// host; the ceiling only bounds the MaxSleepAllowed query.
func (n *Negotiator) Sleep(granted time.Duration) {
	if granted < DeepSleepThreshold {
		n.mode = Idle
		return
	}
	if n.deepSleep != nil {
		n.deepSleep(granted)
	}
}

// Wake marks the device busy again after any callback activity.
func (n *Negotiator) Wake() {
	n.mode = NotIdle
}

// TimeToSleep answers the host poll for how long it may suspend.
// Zero means sleep is not currently allowed.
func (n *Negotiator) TimeToSleep() time.Duration {
	if n.mode != Idle {
		return 0
	}
	return SleepCeiling
}

// PermittedWithoutShutdown answers the host poll for whether the device
// may suspend without a full shutdown.
func (n *Negotiator) PermittedWithoutShutdown() bool {
	return n.mode == Idle
}

// Mode returns the current state flag.
func (n *Negotiator) Mode() Mode {
	return n.mode
}
