package availability

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// WeeklySlots maps a weekday to its within-day intervals.
type WeeklySlots map[Weekday][]Interval

// DateSlots maps a calendar date to its within-day intervals.
type DateSlots map[Date][]Interval

// BookedDays maps the date of a booking's start to the absolute spans booked
// on it.
type BookedDays map[Date][]Span

// Validate checks every weekday key and interval.
func (w WeeklySlots) Validate() error {
	for day, intervals := range w {
		if !day.Valid() {
			return fmt.Errorf("invalid weekday %d", int(day))
		}
		for _, in := range intervals {
			if err := in.Validate(); err != nil {
				return fmt.Errorf("%s [%d,%d): %w", day, in.Start, in.End, err)
			}
		}
	}
	return nil
}

func (d DateSlots) Validate() error {
	for date, intervals := range d {
		if _, err := ParseDate(string(date)); err != nil {
			return err
		}
		for _, in := range intervals {
			if err := in.Validate(); err != nil {
				return fmt.Errorf("%s [%d,%d): %w", date, in.Start, in.End, err)
			}
		}
	}
	return nil
}

func (b BookedDays) Validate() error {
	for date, spans := range b {
		if _, err := ParseDate(string(date)); err != nil {
			return err
		}
		for _, s := range spans {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("%s [%d,%d): %w", date, s.Start, s.End, err)
			}
		}
	}
	return nil
}

// All returns every booked span regardless of date, ordered by start.
func (b BookedDays) All() []Span {
	var out []Span
	for _, spans := range b {
		out = append(out, spans...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Add returns a copy of b with span appended under the date of its start.
// The receiver is left untouched.
func (b BookedDays) Add(span Span) BookedDays {
	out := make(BookedDays, len(b)+1)
	for date, spans := range b {
		out[date] = slices.Clone(spans)
	}
	date := DateOf(span.Start)
	out[date] = append(out[date], span)
	return out
}

func (w WeeklySlots) Value() (driver.Value, error) { return jsonValue(w) }
func (w *WeeklySlots) Scan(value any) error      { return jsonScan(value, w) }
func (d DateSlots) Value() (driver.Value, error)   { return jsonValue(d) }
func (d *DateSlots) Scan(value any) error        { return jsonScan(value, d) }
func (b BookedDays) Value() (driver.Value, error)  { return jsonValue(b) }
func (b *BookedDays) Scan(value any) error       { return jsonScan(value, b) }

// jsonValue implements driver.Valuer for the JSONB columns. Nil maps are
// stored as "{}".
func jsonValue[M ~map[K]V, K comparable, V any](m M) (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func jsonScan(value any, dest any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("not a []byte: %T", value)
	}
}
