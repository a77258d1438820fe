package clock

import "time"

// Clock supplies the current time to services that derive business dates.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed business location.
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	now := time.Now()
	if s.Location != nil {
		return now.In(s.Location)
	}
	return now
}

// Fixed always returns the same instant. Tests advance it by assigning At.
type Fixed struct {
	At time.Time
}

func (f *Fixed) Now() time.Time {
	return f.At
}

// Func adapts a plain function into a Clock.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Today truncates t to midnight in its own location.
func Today(c Clock) time.Time {
	now := c.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
