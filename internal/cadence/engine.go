package cadence

import (
	"time"

	"github.com/sweeney/presence-sensor/internal/timer"
)

// Engine owns the cadence timer and the publish decision for one sensor.
// It is driven entirely from the caller's dispatch loop: OnTick on every
// cadence timer firing, ValueChanged on every presence transition. The
// engine never publishes on its own schedule; it only arms the timer and
// reacts to callbacks, so all methods are safe under a run-to-completion
// callback model without locks.
type Engine struct {
	cfg        Config
	period     time.Duration // publish period; 0 = idle, timer stopped
	fastPeriod time.Duration // period / divisor while divisor > 1
	interval   time.Duration // currently armed interval; 0 = stopped

	lastSent    int32 // last value shipped out (publish or report)
	lastPub     int32 // last value published on cadence
	lastPubTime time.Time

	tm   timer.Timer
	now  func() time.Time
	read func() int32
	emit func(value int32)
}

// New creates an idle Engine. read returns the current sensor value;
// emit hands a value to the transport. The engine stays idle until
// SetPeriod is called with a nonzero period or a value change fires the
// publish gate.
func New(cfg Config, tm timer.Timer, now func() time.Time, read func() int32, emit func(value int32)) *Engine {
	return &Engine{
		cfg:  cfg.Normalize(),
		tm:   tm,
		now:  now,
		read: read,
		emit: emit,
	}
}

// SetPeriod stores a new publish period and restarts the timer.
// The last-published time is cleared so the next expiry publishes
// regardless of when the value was previously published.
func (e *Engine) SetPeriod(period time.Duration) {
	e.period = period
	e.Restart()
	e.lastPubTime = time.Time{}
}

// Period returns the current publish period.
func (e *Engine) Period() time.Duration {
	return e.period
}

// ApplyConfig installs a new cadence, restarts the timer and clears the
// last-published time to force a publish on the next expiry.
// Persistence of the config is the caller's concern.
func (e *Engine) ApplyConfig(cfg Config) {
	e.cfg = cfg.Normalize()
	e.Restart()
	e.lastPubTime = time.Time{}
}

// Config returns the active cadence.
func (e *Engine) Config() Config {
	return e.cfg
}

// Restart recomputes the timer interval from the publish period, fast
// cadence divisor and minimum interval, then re-arms the timer. With a
// zero publish period the timer is stopped and the engine is idle.
func (e *Engine) Restart() {
	timeout := e.period

	e.tm.Cancel()
	e.interval = 0
	if timeout == 0 {
		e.fastPeriod = 0
		return
	}

	// With a fast cadence divisor the value must be checked more often
	// than the publication period.
	if e.cfg.FastCadencePeriodDivisor > 1 {
		e.fastPeriod = e.period / time.Duration(e.cfg.FastCadencePeriodDivisor)
		timeout = e.fastPeriod
	} else {
		e.fastPeriod = 0
	}

	// Never check more often than min interval while triggers are set.
	if min := e.cfg.MinInterval(); min != 0 && min > timeout && e.cfg.deltasSet() {
		timeout = min
	}

	e.interval = timeout
	e.tm.Arm(timeout)
}

// OnTick evaluates all publish conditions. Called on every cadence timer
// firing. The timer is always re-armed afterward, whether or not a
// publish occurred.
func (e *Engine) OnTick() {
	now := e.now()
	current := e.read()

	// The rate limit always wins: nothing is evaluated while the
	// minimum interval since the last publish has not elapsed.
	if min := e.cfg.MinInterval(); min != 0 && now.Sub(e.lastPubTime) < min {
		e.Restart()
		return
	}

	need := false

	// Publication period expired.
	if e.period != 0 && now.Sub(e.lastPubTime) >= e.period {
		need = true
	}

	// Value moved further than the configured triggers.
	if !need && e.cfg.deltasSet() {
		if e.cfg.TriggerTypePercentage {
			need = percentDeltaExceeded(e.cfg, current, e.lastPub)
		} else {
			need = nativeDeltaExceeded(e.cfg, current, e.lastPub)
		}
	}

	// Fast publish period expired and the value is in the window.
	if !need && e.fastPeriod != 0 && now.Sub(e.lastPubTime) >= e.fastPeriod {
		need = e.cfg.windowMatch(current)
	}

	if need {
		e.publish(now, current)
	}
	e.Restart()
}

// ValueChanged is the event-driven publish gate, invoked synchronously on
// every presence transition. With periodic publication active it is a
// no-op; with no cadence configured it publishes unconditionally;
// otherwise it applies the min-interval gate and the native delta test.
// Percentage deltas are deliberately not evaluated on this path, only on
// the timer tick path.
func (e *Engine) ValueChanged() {
	if e.period != 0 {
		// Scheduler owns timing; the value goes out on the next tick.
		return
	}

	if !e.cfg.Configured() {
		now := e.now()
		e.publish(now, e.read())
		return
	}

	now := e.now()
	if now.Sub(e.lastPubTime) < e.cfg.MinInterval() {
		return
	}

	current := e.read()
	if nativeDeltaExceeded(e.cfg, current, e.lastPub) {
		e.publish(now, current)
		e.Restart()
	}
}

// Report ships the current value out on demand (a sensor GET). It
// refreshes the last sent value but not the published value or time,
// so cadence decisions are unaffected.
func (e *Engine) Report() {
	v := e.read()
	e.lastSent = v
	e.emit(v)
}

func (e *Engine) publish(now time.Time, current int32) {
	e.lastSent = current
	e.lastPub = current
	e.lastPubTime = now
	e.emit(current)
}

// LastPublished returns the last value published on cadence and when.
// The zero time means nothing has been published yet (or a publish was
// forced by a configuration change).
func (e *Engine) LastPublished() (int32, time.Time) {
	return e.lastPub, e.lastPubTime
}

// LastSent returns the last value shipped out, including GET responses.
func (e *Engine) LastSent() int32 {
	return e.lastSent
}

// Interval returns the currently armed timer interval, 0 when idle.
// The sleep negotiator uses this to bound how long the device may
// suspend while presence is active.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

// FastPeriod returns the derived fast publish period, 0 when the
// divisor is 1 or the engine is idle.
func (e *Engine) FastPeriod() time.Duration {
	return e.fastPeriod
}

// nativeDeltaExceeded tests the triggers in native value units.
func nativeDeltaExceeded(cfg Config, current, last int32) bool {
	if cfg.TriggerDeltaUp != 0 && int64(current) >= int64(last)+int64(cfg.TriggerDeltaUp) {
		return true
	}
	if cfg.TriggerDeltaDown != 0 && int64(current) <= int64(last)-int64(cfg.TriggerDeltaDown) {
		return true
	}
	return false
}

// percentDeltaExceeded tests the triggers as a percentage of the current
// value, in units of 0.01%. A zero current value would divide by zero,
// so it never fires the percentage trigger.
func percentDeltaExceeded(cfg Config, current, last int32) bool {
	if current == 0 {
		return false
	}
	if cfg.TriggerDeltaUp != 0 && current > last {
		return int64(current-last)*10000/int64(current) > int64(cfg.TriggerDeltaUp)
	}
	if cfg.TriggerDeltaDown != 0 && current < last {
		return int64(last-current)*10000/int64(current) > int64(cfg.TriggerDeltaDown)
	}
	return false
}
