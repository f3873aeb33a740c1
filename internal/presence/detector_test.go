package presence

import (
	"testing"
	"time"

	"github.com/sweeney/presence-sensor/internal/timer"
)

type transition struct {
	rising bool
}

func newTestDetector(blind time.Duration) (*Detector, *timer.Fake, *[]transition) {
	tm := timer.NewFake()
	var transitions []transition
	d := New(blind, tm, func(rising bool) {
		transitions = append(transitions, transition{rising: rising})
	})
	return d, tm, &transitions
}

func TestFirstEdgeRaisesPresence(t *testing.T) {
	d, tm, transitions := newTestDetector(7 * time.Second)

	d.OnEdge()

	if !d.Detected() {
		t.Error("expected presence detected after edge")
	}
	if d.Value() != 1 {
		t.Errorf("expected value 1, got %d", d.Value())
	}
	if len(*transitions) != 1 || !(*transitions)[0].rising {
		t.Fatalf("expected one rising transition, got %v", *transitions)
	}
	if tm.LastDuration != 14*time.Second {
		t.Errorf("expected blind timer armed at 2x blind time (14s), got %v", tm.LastDuration)
	}
}

func TestRepeatedEdgesCoalesce(t *testing.T) {
	// Edges spaced closer than the blind window must produce exactly
	// one rising transition; each edge only re-arms the timer.
	d, tm, transitions := newTestDetector(7 * time.Second)

	for i := 0; i < 10; i++ {
		d.OnEdge()
	}

	if len(*transitions) != 1 {
		t.Errorf("expected a single rising transition, got %d", len(*transitions))
	}
	if len(tm.ArmCalls) != 10 {
		t.Errorf("expected the timer re-armed on every edge, got %d arms", len(tm.ArmCalls))
	}
	if !d.Detected() {
		t.Error("presence should still be detected")
	}
}

func TestBlindExpiryClearsPresence(t *testing.T) {
	d, _, transitions := newTestDetector(7 * time.Second)

	d.OnEdge()
	d.OnBlindExpiry()

	if d.Detected() {
		t.Error("expected presence cleared after blind expiry")
	}
	if d.Value() != 0 {
		t.Errorf("expected value 0, got %d", d.Value())
	}
	if len(*transitions) != 2 {
		t.Fatalf("expected rise and fall, got %d transitions", len(*transitions))
	}
	if (*transitions)[1].rising {
		t.Error("second transition should be falling")
	}
}

func TestBlindExpiryWithoutPresenceIsNoop(t *testing.T) {
	d, _, transitions := newTestDetector(7 * time.Second)

	d.OnBlindExpiry()

	if len(*transitions) != 0 {
		t.Errorf("expected no transition, got %d", len(*transitions))
	}
	if d.Detected() {
		t.Error("presence should remain clear")
	}
}

func TestPresenceEpisodeSequence(t *testing.T) {
	d, _, transitions := newTestDetector(7 * time.Second)

	// Two full episodes: rise, fall, rise, fall.
	d.OnEdge()
	d.OnEdge() // renewal inside the window
	d.OnBlindExpiry()
	d.OnEdge()
	d.OnBlindExpiry()

	want := []bool{true, false, true, false}
	if len(*transitions) != len(want) {
		t.Fatalf("expected %d transitions, got %d", len(want), len(*transitions))
	}
	for i, rising := range want {
		if (*transitions)[i].rising != rising {
			t.Errorf("transition %d: rising=%v, want %v", i, (*transitions)[i].rising, rising)
		}
	}
}

func TestNilOnChange(t *testing.T) {
	tm := timer.NewFake()
	d := New(7*time.Second, tm, nil)

	// Must not panic without a listener.
	d.OnEdge()
	d.OnBlindExpiry()

	if d.Detected() {
		t.Error("expected presence cleared")
	}
}
