// Package edge provides the interrupt edge source for the PIR sensor
// with hardware abstraction. The real implementation uses Linux GPIO
// character device edge events; the fake implementation allows tests to
// inject edges.
package edge

import "time"

// Source delivers hardware edge events on a channel. Each received value
// is the time one rising edge was observed. The channel is buffered;
// edges arriving while the consumer is busy coalesce, which is harmless
// because an edge only re-arms the blind timer.
type Source interface {
	// Events returns the channel edges are delivered on.
	Events() <-chan time.Time

	// Close releases hardware resources.
	Close() error
}

// DefaultPin is the BCM pin the PIR interrupt/data output (DOCI) line is
// wired to.
const DefaultPin = 26
