// Package clock abstracts the current time so scheduling rules can be tested
// without the wall clock.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System is the wall clock used in production wiring.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }
