package timer

import (
	"sync"
	"time"
)

// Channel is a Timer that delivers firings on a channel.
// Firings are consumed via C(); the channel has capacity one and a stale
// undelivered firing is dropped when the timer is re-armed or cancelled,
// so the consumer never observes a firing from a superseded schedule.
type Channel struct {
	mu sync.Mutex
	c  chan time.Time
	t  *time.Timer
}

// NewChannel creates an unarmed Channel timer.
func NewChannel() *Channel {
	return &Channel{c: make(chan time.Time, 1)}
}

// C returns the channel on which firings are delivered.
func (t *Channel) C() <-chan time.Time {
	return t.c
}

// Arm schedules a firing after d, replacing any pending firing.
func (t *Channel) Arm(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.t = time.AfterFunc(d, func() {
		select {
		case t.c <- time.Now():
		default:
		}
	})
}

// Cancel discards any pending firing.
func (t *Channel) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Channel) stopLocked() {
	if t.t != nil {
		t.t.Stop()
		t.t = nil
	}
	// Drain a firing that raced in before the stop.
	select {
	case <-t.c:
	default:
	}
}
