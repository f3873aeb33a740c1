package power

import (
	"testing"
	"time"
)

type negotiatorEnv struct {
	interval   time.Duration
	detected   bool
	deepSleeps []time.Duration
}

func (e *negotiatorEnv) negotiator() *Negotiator {
	return New(
		func() time.Duration { return e.interval },
		func() bool { return e.detected },
		func(d time.Duration) { e.deepSleeps = append(e.deepSleeps, d) },
	)
}

func TestMaxSleepCeiling(t *testing.T) {
	env := &negotiatorEnv{}
	n := env.negotiator()

	if got := n.MaxSleepAllowed(5 * time.Minute); got != SleepCeiling {
		t.Errorf("expected grant clamped to %v, got %v", SleepCeiling, got)
	}
	if got := n.MaxSleepAllowed(10 * time.Second); got != 10*time.Second {
		t.Errorf("expected short request unchanged, got %v", got)
	}
}

func TestMaxSleepClampedToCadenceWhilePresent(t *testing.T) {
	env := &negotiatorEnv{interval: 10 * time.Second, detected: true}
	n := env.negotiator()

	if got := n.MaxSleepAllowed(SleepCeiling); got != 10*time.Second {
		t.Errorf("expected grant clamped to cadence interval, got %v", got)
	}
}

func TestMaxSleepIgnoresCadenceWhenClear(t *testing.T) {
	// Without presence the device has nothing due, so the cadence timer
	// does not shorten the grant.
	env := &negotiatorEnv{interval: 10 * time.Second, detected: false}
	n := env.negotiator()

	if got := n.MaxSleepAllowed(SleepCeiling); got != SleepCeiling {
		t.Errorf("expected full ceiling while clear, got %v", got)
	}
}

func TestMaxSleepIgnoresIdleScheduler(t *testing.T) {
	env := &negotiatorEnv{interval: 0, detected: true}
	n := env.negotiator()

	if got := n.MaxSleepAllowed(SleepCeiling); got != SleepCeiling {
		t.Errorf("expected full ceiling with idle scheduler, got %v", got)
	}
}

func TestSleepShortGrantGoesIdle(t *testing.T) {
	env := &negotiatorEnv{}
	n := env.negotiator()

	n.Sleep(SleepCeiling)

	if n.Mode() != Idle {
		t.Errorf("expected mode Idle, got %v", n.Mode())
	}
	if len(env.deepSleeps) != 0 {
		t.Errorf("short grant must not reach deep sleep, got %v", env.deepSleeps)
	}
	if n.TimeToSleep() != SleepCeiling {
		t.Errorf("TimeToSleep = %v, want %v", n.TimeToSleep(), SleepCeiling)
	}
	if !n.PermittedWithoutShutdown() {
		t.Error("expected suspend permitted without shutdown")
	}
}

func TestSleepLongGrantDeepSleeps(t *testing.T) {
	env := &negotiatorEnv{}
	n := env.negotiator()

	n.Sleep(45 * time.Minute)

	if len(env.deepSleeps) != 1 || env.deepSleeps[0] != 45*time.Minute {
		t.Errorf("expected one deep sleep of 45m, got %v", env.deepSleeps)
	}
}

func TestWakeLeavesIdle(t *testing.T) {
	env := &negotiatorEnv{}
	n := env.negotiator()

	n.Sleep(SleepCeiling)
	n.Wake()

	if n.Mode() != NotIdle {
		t.Errorf("expected mode NotIdle after wake, got %v", n.Mode())
	}
	if n.TimeToSleep() != 0 {
		t.Errorf("TimeToSleep = %v, want 0 while busy", n.TimeToSleep())
	}
	if n.PermittedWithoutShutdown() {
		t.Error("suspend must not be permitted while busy")
	}
}
