package availability

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleDays = map[Weekday]rrule.Weekday{
	Sunday:    rrule.SU,
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
}

// ExpandWeekly turns the weekly template into concrete spans for every day in
// [from, to). Both bounds are truncated to UTC midnight.
func ExpandWeekly(weekly WeeklySlots, from, to time.Time) ([]Span, error) {
	start := truncateDay(from)
	end := truncateDay(to)
	if !end.After(start) {
		return nil, nil
	}

	var out []Span
	for day, intervals := range weekly {
		if len(intervals) == 0 {
			continue
		}
		rd, ok := rruleDays[day]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %d", int(day))
		}
		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Dtstart:   start,
			Byweekday: []rrule.Weekday{rd},
			Until:     end,
		})
		if err != nil {
			return nil, fmt.Errorf("new rrule for %s: %w", day, err)
		}
		for _, occurrence := range rule.Between(start, end, true) {
			if !occurrence.Before(end) {
				continue
			}
			midnight := occurrence.Unix()
			for _, in := range intervals {
				out = append(out, Span{Start: midnight + in.Start, End: midnight + in.End})
			}
		}
	}
	sortSpans(out)
	return out, nil
}

// ExpandDates returns the date-specific intervals falling in [from, to) as
// absolute spans.
func ExpandDates(dates DateSlots, from, to time.Time) ([]Span, error) {
	start := truncateDay(from).Unix()
	end := truncateDay(to).Unix()

	var out []Span
	for date, intervals := range dates {
		midnight, err := date.Midnight()
		if err != nil {
			return nil, err
		}
		if midnight < start || midnight >= end {
			continue
		}
		for _, in := range intervals {
			out = append(out, Span{Start: midnight + in.Start, End: midnight + in.End})
		}
	}
	sortSpans(out)
	return out, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sortSpans(spans []Span) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start == spans[j].Start {
			return spans[i].End < spans[j].End
		}
		return spans[i].Start < spans[j].Start
	})
}
