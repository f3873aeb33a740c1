//go:build linux

package edge

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource watches a GPIO line for rising edges using the Linux GPIO
// character device.
type RealSource struct {
	chip   *gpiocdev.Chip
	line   *gpiocdev.Line
	events chan time.Time
}

// NewRealSource requests the given pin as an input with pull-down and
// subscribes to rising edge events.
func NewRealSource(pin int) (*RealSource, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &RealSource{
		chip:   chip,
		events: make(chan time.Time, 8),
	}

	line, err := chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pin %d: %w", pin, err)
	}
	s.line = line

	return s, nil
}

// handleEvent runs on the gpiocdev event goroutine; it only forwards the
// edge into the channel so all logic stays on the dispatch loop.
func (s *RealSource) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	select {
	case s.events <- time.Now():
	default:
		// Consumer is busy; the pending edge already covers this one.
	}
}

// Events returns the edge channel.
func (s *RealSource) Events() <-chan time.Time {
	return s.events
}

// Close releases GPIO resources. The line is reconfigured to input with
// pull-down (matching Pi boot defaults) before closing so external
// hardware sees a clean state across restarts.
func (s *RealSource) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
