package chrono

import (
	"time"
)

var ny *time.Location

func init() {
	var err error
	ny, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
}

// NY returns a [*time.Location] for America/New_York, the timezone earnings
// calendars are published in.
func NY() *time.Location {
	return ny
}

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time, the timezone of the time will default to America/New_York.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(ny)
}

// FixedTime is a TimeAPI that always returns the same instant.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At.In(ny)
}

// Day truncates t to midnight of its calendar day in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
