package model

import "time"

// Clock provides the current time. Tests substitute a fixed or stepping clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Ensure SystemClock implements Clock.
var _ Clock = SystemClock{}
