// Package cadence contains the publish-decision engine for a single
// sensor: it reconciles periodic publication, fast cadence, trigger
// deltas and the minimum publish interval into one timer-driven decision.
// This package has NO hardware or transport dependencies; time is
// injectable and the timer is an abstract capability.
package cadence

import (
	"encoding/json"
	"time"
)

// Config holds the tunable cadence parameters for one sensor.
// It is persisted across power cycles and replaced wholesale when the
// configuration client sends a new cadence.
type Config struct {
	// FastCadencePeriodDivisor shortens the publish period while the
	// value is inside the fast-cadence window. 1 means no fast cadence.
	FastCadencePeriodDivisor uint16 `json:"fast_cadence_period_divisor"`

	// TriggerTypePercentage selects percentage delta semantics
	// (units of 0.01%) instead of native value units.
	TriggerTypePercentage bool `json:"trigger_type_percentage"`

	// TriggerDeltaUp and TriggerDeltaDown are the minimum increase or
	// decrease from the last published value that forces a publish.
	// 0 disables the trigger.
	TriggerDeltaUp   uint32 `json:"trigger_delta_up"`
	TriggerDeltaDown uint32 `json:"trigger_delta_down"`

	// MinIntervalMs is the minimum spacing between publishes in
	// milliseconds. 0 disables rate limiting.
	MinIntervalMs uint32 `json:"min_interval_ms"`

	// FastCadenceLow and FastCadenceHigh bound the fast-cadence window.
	// low < high means inside-range, low > high means outside-range,
	// low == high means equals.
	FastCadenceLow  int32 `json:"fast_cadence_low"`
	FastCadenceHigh int32 `json:"fast_cadence_high"`
}

// Default returns the compiled-in cadence used when no record is
// persisted: no fast cadence, no triggers, 1024 ms minimum interval.
func Default() Config {
	return Config{
		FastCadencePeriodDivisor: 1,
		MinIntervalMs:            1 << 10,
	}
}

// Normalize enforces the divisor >= 1 invariant. Everything else is
// accepted as sent; out-of-range values degrade cadence behavior rather
// than being rejected.
func (c Config) Normalize() Config {
	if c.FastCadencePeriodDivisor < 1 {
		c.FastCadencePeriodDivisor = 1
	}
	return c
}

// MinInterval returns the minimum publish spacing as a duration.
func (c Config) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

// Configured reports whether any cadence behavior is set. When false,
// a value change publishes immediately and unconditionally.
func (c Config) Configured() bool {
	return c.FastCadencePeriodDivisor > 1 || c.deltasSet()
}

func (c Config) deltasSet() bool {
	return c.TriggerDeltaUp != 0 || c.TriggerDeltaDown != 0
}

// windowMatch tests the value against the fast-cadence window using the
// three-way relation between the bounds.
func (c Config) windowMatch(v int32) bool {
	switch {
	case c.FastCadenceHigh > c.FastCadenceLow:
		return v > c.FastCadenceLow && v <= c.FastCadenceHigh
	case c.FastCadenceHigh < c.FastCadenceLow:
		return v >= c.FastCadenceLow || v < c.FastCadenceHigh
	default:
		return v == c.FastCadenceLow
	}
}

// Encode serializes the config for the persistent store.
func (c Config) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses a persisted config record. The result is normalized.
func Decode(data []byte) (Config, error) {
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	return c.Normalize(), nil
}
