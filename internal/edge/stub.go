//go:build !linux

package edge

import "errors"

// NewRealSource is not available on non-Linux platforms.
// Use the fake source for development and testing.
func NewRealSource(pin int) (Source, error) {
	return nil, errors.New("gpio edge events only supported on linux")
}
