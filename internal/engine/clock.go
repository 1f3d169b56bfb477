package engine

import "time"

// Clock supplies the run's wall timestamps. The engine takes time as a
// dependency so reconciliation output and reports are reproducible in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the machine clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }
