package availability

import "errors"

// Interval is a half-open [Start, End) range expressed in seconds since UTC
// midnight. It is only meaningful together with the weekday or date it is
// filed under.
type Interval struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Span is a half-open [Start, End) range of absolute epoch seconds.
type Span struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

func (i Interval) Validate() error {
	if i.Start < 0 || i.End > SecondsPerDay {
		return errors.New("interval must lie within one day")
	}
	if i.Start >= i.End {
		return errors.New("interval start must be before end")
	}
	return nil
}

func (s Span) Validate() error {
	if s.Start >= s.End {
		return errors.New("span start must be before end")
	}
	return nil
}

// Offsets splits the span into the weekday, date and within-day interval of
// its start. An end that falls past midnight is carried as an offset beyond
// SecondsPerDay so comparisons against same-day intervals stay monotonic.
func (s Span) Offsets() (Weekday, Date, Interval) {
	day, start := ToWeekdayOffset(s.Start)
	return day, DateOf(s.Start), Interval{Start: start, End: start + (s.End - s.Start)}
}

func (s Span) DurationMinutes() int64 {
	return DurationMinutes(s.Start, s.End)
}

// endpointOverlap reports whether either endpoint of [s1,e1) lands inside
// [s2,e2).
func endpointOverlap(s1, e1, s2, e2 int64) bool {
	return (s1 >= s2 && s1 < e2) || (e1 >= s2 && e1 < e2)
}

func intersects(s1, e1, s2, e2 int64) bool {
	return s1 < e2 && s2 < e1
}

func contains(outerStart, outerEnd, start, end int64) bool {
	return start >= outerStart && end <= outerEnd
}
