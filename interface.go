package daylog

import "time"

// Clock supplies the time used for line timestamps and day rotation.
// Tests substitute a fake clock to cross day boundaries.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface
type ClockFunc func() time.Time

// Now returns f()
func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock returns the wall clock in the local time zone
func SystemClock() Clock {
	return systemClock{}
}

// ErrorHandler receives failures that happen on the consumer goroutine,
// where no producer is around to return them to.
type ErrorHandler func(err error)
