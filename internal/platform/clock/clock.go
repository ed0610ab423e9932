// Package clock supplies the instant stamped on journal entries and its display format.
package clock

import "time"

const (
	DateLayout = "02/01/06"
	TimeLayout = "15:04"
)

// Clock returns the current instant
type Clock interface {
	Now() time.Time
}

// System reads the local wall clock
type System struct{}

// Now implements Clock
func (System) Now() time.Time {
	return time.Now()
}

// Fixed always reports the same instant
type Fixed struct {
	At time.Time
}

// Now implements Clock
func (f Fixed) Now() time.Time {
	return f.At
}

// Format splits t into the date and time strings used by the journal
func Format(t time.Time) (string, string) {
	return t.Format(DateLayout), t.Format(TimeLayout)
}
