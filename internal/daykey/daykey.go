// Package daykey maps instants to calendar-day identifiers in a fixed
// UTC offset. There is no timezone database lookup and no daylight saving:
// the learner's day always starts at midnight UTC+offset.
package daykey

import (
	"fmt"
	"time"
)

// DefaultOffsetHours is the learner zone (UTC+9).
const DefaultOffsetHours = 9

// Layout is the calendar-day format used for every day key.
const Layout = "2006-01-02"

// Key returns the YYYY-MM-DD day containing t, shifted by offsetHours.
func Key(t time.Time, offsetHours int) string {
	return t.UTC().Add(time.Duration(offsetHours) * time.Hour).Format(Layout)
}

// Today is Key(time.Now(), offsetHours).
func Today(offsetHours int) string {
	return Key(time.Now(), offsetHours)
}

// Zone returns the fixed location for offsetHours, e.g. "UTC+9".
func Zone(offsetHours int) *time.Location {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return time.FixedZone(name, offsetHours*3600)
}

// Start returns the instant at which day begins in the offset zone.
func Start(day string, offsetHours int) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, DayPortion(day), Zone(offsetHours))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return t.UTC(), nil
}

// Validate reports whether day is a well-formed YYYY-MM-DD key.
func Validate(day string) error {
	if _, err := time.Parse(Layout, day); err != nil {
		return fmt.Errorf("parse day %q: %w", day, err)
	}
	return nil
}

// DayPortion returns the leading YYYY-MM-DD of s. Strings shorter than a
// full day are returned unchanged.
func DayPortion(s string) string {
	if len(s) > len(Layout) {
		return s[:len(Layout)]
	}
	return s
}

// Before reports whether day a is strictly earlier than day b.
// Empty keys sort before everything.
func Before(a, b string) bool {
	return DayPortion(a) < DayPortion(b)
}

// DaysBetween returns the number of calendar days from a to b
// (negative when b is before a).
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(Layout, DayPortion(a))
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", a, err)
	}
	tb, err := time.Parse(Layout, DayPortion(b))
	if err != nil {
		return 0, fmt.Errorf("parse day %q: %w", b, err)
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
