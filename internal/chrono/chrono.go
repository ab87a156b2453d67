package chrono

import (
	"time"

	"cloud.google.com/go/civil"
)

// DefaultLocation is the timezone both providers publish their values in.
const DefaultLocation = "America/Santiago"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in the configured location.
	Now() time.Time
	Location() *time.Location
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct {
	location *time.Location
}

// NewStandardTime loads `name` as the location all times will be reported in, an empty name
// falls back to DefaultLocation.
func NewStandardTime(name string) (StandardTime, error) {
	if name == "" {
		name = DefaultLocation
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardTime) Location() *time.Location {
	return s.location
}

// Fixed is a TimeAPI that is stuck at a single instant.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}

func (f Fixed) Location() *time.Location {
	return f.Time.Location()
}

// Today returns the calendar date of `t.Now()` in its own location.
func Today(t TimeAPI) civil.Date {
	return civil.DateOf(t.Now())
}
