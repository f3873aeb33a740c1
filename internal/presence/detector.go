// Package presence converts raw interrupt edges from a PIR sensor into a
// debounced boolean presence signal. The sensor raises an edge on every
// detected movement; absence of further edges within twice the blind time
// is interpreted as "no presence". This is deliberately a single
// flip-flop, not a counter: rapid edges keep re-arming the same timer and
// coalesce into one presence episode.
package presence

import (
	"time"

	"github.com/sweeney/presence-sensor/internal/timer"
)

// DefaultBlindTime matches the PIR hardware blind time: after an edge the
// sensor itself suppresses interrupts for this long.
const DefaultBlindTime = 7 * time.Second

// Detector tracks the debounced presence state.
type Detector struct {
	blind    time.Duration
	tm       timer.Timer
	detected bool
	onChange func(rising bool)
}

// New creates a Detector. onChange is invoked synchronously on every
// presence transition; rising is true when presence appears.
func New(blind time.Duration, tm timer.Timer, onChange func(rising bool)) *Detector {
	return &Detector{
		blind:    blind,
		tm:       tm,
		onChange: onChange,
	}
}

// OnEdge handles one hardware edge. It re-arms the blind timer at twice
// the blind time; if no further edge renews it, expiry means no presence.
// A rising transition is reported only when the state actually flips.
func (d *Detector) OnEdge() {
	d.tm.Arm(2 * d.blind)

	if !d.detected {
		d.detected = true
		if d.onChange != nil {
			d.onChange(true)
		}
	}
}

// OnBlindExpiry handles the blind timer firing without a renewing edge.
func (d *Detector) OnBlindExpiry() {
	if d.detected {
		d.detected = false
		if d.onChange != nil {
			d.onChange(false)
		}
	}
}

// Detected returns the current debounced presence state.
func (d *Detector) Detected() bool {
	return d.detected
}

// Value returns the presence state as a sensor reading (1 or 0).
func (d *Detector) Value() int32 {
	if d.detected {
		return 1
	}
	return 0
}
