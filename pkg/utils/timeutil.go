package utils

import (
	"time"
)

// SGT is the default report timezone (Asia/Singapore, UTC+8). Ages are
// resolved against the calendar date in this zone, not the server's.
var SGT *time.Location

func init() {
	SGT = LoadLocation("Asia/Singapore", 8*60*60)
}

// LoadLocation loads a tz database location, falling back to a fixed zone
// with the given offset when the tz database is not available.
func LoadLocation(name string, offsetSec int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, offsetSec)
	}
	return loc
}

// Clock returns the current time. Components take a Clock so tests can pin "today".
type Clock func() time.Time

// SystemClock returns a Clock reading wall time in loc.
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = SGT
	}
	return func() time.Time { return time.Now().In(loc) }
}

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// NowSGT returns the current time in SGT.
func NowSGT() time.Time {
	return time.Now().In(SGT)
}

// Date returns midnight of the given calendar day in loc.
func Date(year int, month time.Month, day int, loc *time.Location) time.Time {
	if loc == nil {
		loc = SGT
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// FormatDate formats a time.Time to "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a time.Time to "2006-01-02 15:04:05 MST".
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05 MST")
}
