// Package clock abstracts reading the wall clock, so code that stamps
// artifact files with the current time can be tested against a fixed
// instant instead of time.Now().
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

// Now calls the function.
func (f Func) Now() time.Time {
	return f()
}

// Fixed returns a Clock pinned to t. Tests use it to get stable
// timestamps in artifact names.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}
