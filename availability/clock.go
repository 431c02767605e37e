package availability

import (
	"fmt"
	"time"
)

const (
	SecondsPerDay = 24 * 60 * 60
	dateLayout    = "2006-01-02"
)

// Date is a UTC calendar date in YYYY-MM-DD form.
type Date string

// DateOf returns the UTC calendar date containing the epoch second.
func DateOf(epochSeconds int64) Date {
	return Date(time.Unix(epochSeconds, 0).UTC().Format(dateLayout))
}

func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date(s), nil
}

// Midnight returns the epoch second at 00:00:00 UTC of the date.
func (d Date) Midnight() (int64, error) {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", d, err)
	}
	return t.Unix(), nil
}

// ToWeekdayOffset decomposes an absolute timestamp into its UTC weekday and
// the number of seconds elapsed since UTC midnight.
func ToWeekdayOffset(epochSeconds int64) (Weekday, int64) {
	t := time.Unix(epochSeconds, 0).UTC()
	offset := int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
	return Weekday(t.Weekday()), offset
}

// DurationMinutes returns (end - start) / 60, truncated.
func DurationMinutes(start, end int64) int64 {
	return (end - start) / 60
}
