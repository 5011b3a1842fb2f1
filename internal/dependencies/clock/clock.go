// Package clock supplies the service's notion of "now".
package clock

import "time"

// Precision matches the resolution of PostgreSQL timestamptz columns, so a
// time read back from the database equals the one that was written.
const Precision = time.Microsecond

// Clock provides the current time and can be swapped for a mock in tests
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in UTC
type RealClock struct{}

// New creates a RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to Precision
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}
