package availability

import (
	"fmt"
	"strings"
	"time"
)

// Weekday mirrors time.Weekday ordering (Sunday = 0) and serializes as the
// upper-case English day name, e.g. "MONDAY".
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{"SUNDAY", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}

// AllWeekdays returns the seven days in their fixed order.
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// Weekdays returns Monday through Friday.
func Weekdays() []Weekday {
	var out []Weekday
	for _, d := range AllWeekdays() {
		if !d.IsWeekend() {
			out = append(out, d)
		}
	}
	return out
}

// Weekends returns Sunday and Saturday.
func Weekends() []Weekday {
	var out []Weekday
	for _, d := range AllWeekdays() {
		if d.IsWeekend() {
			out = append(out, d)
		}
	}
	return out
}

func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Time converts to the standard library representation.
func (d Weekday) Time() time.Weekday {
	return time.Weekday(d)
}

func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if name == s || name[:3] == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
