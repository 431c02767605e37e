package availability

const (
	businessDayStart = 9 * 60 * 60
	businessDayEnd   = 17 * 60 * 60
)

// DefaultWeeklyAvailability opens 09:00-17:00 UTC on Monday through Friday.
func DefaultWeeklyAvailability() WeeklySlots {
	out := make(WeeklySlots, 5)
	for _, day := range Weekdays() {
		out[day] = []Interval{{Start: businessDayStart, End: businessDayEnd}}
	}
	return out
}
