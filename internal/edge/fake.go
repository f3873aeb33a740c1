package edge

import "time"

// FakeSource is a test double that delivers scripted edges.
type FakeSource struct {
	events chan time.Time

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeSource creates a FakeSource with room for buffered edges.
func NewFakeSource() *FakeSource {
	return &FakeSource{events: make(chan time.Time, 16)}
}

// Events returns the edge channel.
func (f *FakeSource) Events() <-chan time.Time {
	return f.events
}

// Inject delivers one edge at the given time.
func (f *FakeSource) Inject(t time.Time) {
	f.events <- t
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
