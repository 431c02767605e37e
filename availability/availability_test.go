package availability_test

import (
	"encoding/json"
	"testing"
	"time"

	"calendar-booking/availability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-10 00:00:00 UTC, a Monday.
const mondayMidnight int64 = 1717977600

func TestToWeekdayOffset(t *testing.T) {
	day, offset := availability.ToWeekdayOffset(mondayMidnight + 32400)
	assert.Equal(t, availability.Monday, day)
	assert.Equal(t, int64(32400), offset)

	day, offset = availability.ToWeekdayOffset(mondayMidnight - 1)
	assert.Equal(t, availability.Sunday, day)
	assert.Equal(t, int64(availability.SecondsPerDay-1), offset)

	assert.Equal(t, availability.Date("2024-06-10"), availability.DateOf(mondayMidnight+61200))
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, int64(30), availability.DurationMinutes(0, 1800))
	assert.Equal(t, int64(30), availability.DurationMinutes(0, 1859))
	assert.Equal(t, int64(29), availability.DurationMinutes(0, 1799))
}

func TestWeekdaySets(t *testing.T) {
	assert.Equal(t, []availability.Weekday{
		availability.Monday, availability.Tuesday, availability.Wednesday, availability.Thursday, availability.Friday,
	}, availability.Weekdays())
	assert.Equal(t, []availability.Weekday{availability.Sunday, availability.Saturday}, availability.Weekends())
	assert.Len(t, availability.AllWeekdays(), 7)

	d, err := availability.ParseWeekday("mon")
	require.NoError(t, err)
	assert.Equal(t, availability.Monday, d)
	_, err = availability.ParseWeekday("someday")
	require.Error(t, err)
}

func TestDefaultWeeklyAvailability(t *testing.T) {
	weekly := availability.DefaultWeeklyAvailability()
	require.Len(t, weekly, 5)
	for _, day := range availability.Weekdays() {
		assert.Equal(t, []availability.Interval{{Start: 32400, End: 61200}}, weekly[day], day.String())
	}
	for _, day := range availability.Weekends() {
		_, ok := weekly[day]
		assert.False(t, ok, day.String())
	}
}

func TestHasBookedOverlap(t *testing.T) {
	booked := []availability.Interval{{Start: 36000, End: 39600}}

	tests := []struct {
		name      string
		candidate availability.Interval
		endpoint  bool
		strict    bool
	}{
		{"identical", availability.Interval{Start: 36000, End: 39600}, true, true},
		{"start inside", availability.Interval{Start: 37800, End: 41400}, true, true},
		{"end inside", availability.Interval{Start: 34200, End: 37800}, true, true},
		{"touching before", availability.Interval{Start: 34200, End: 36000}, true, false},
		{"touching after", availability.Interval{Start: 39600, End: 41400}, false, false},
		{"superset", availability.Interval{Start: 34200, End: 43200}, false, true},
		{"disjoint", availability.Interval{Start: 0, End: 1800}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.endpoint, availability.EndpointOverlap.HasBookedOverlap(tt.candidate, booked))
			assert.Equal(t, tt.strict, availability.StrictOverlap.HasBookedOverlap(tt.candidate, booked))
		})
	}
}

func TestHasBookedSpanOverlap(t *testing.T) {
	booked := []availability.Span{{Start: mondayMidnight + 32400, End: mondayMidnight + 34200}}

	dup := availability.Span{Start: mondayMidnight + 32400, End: mondayMidnight + 34200}
	assert.True(t, availability.EndpointOverlap.HasBookedSpanOverlap(dup, booked))
	assert.True(t, availability.StrictOverlap.HasBookedSpanOverlap(dup, booked))

	next := availability.Span{Start: mondayMidnight + 34200, End: mondayMidnight + 36000}
	assert.False(t, availability.EndpointOverlap.HasBookedSpanOverlap(next, booked))
	assert.False(t, availability.EndpointOverlap.HasBookedSpanOverlap(next, nil))
}

func TestParseOverlapPolicy(t *testing.T) {
	p, err := availability.ParseOverlapPolicy("")
	require.NoError(t, err)
	assert.Equal(t, availability.EndpointOverlap, p)

	p, err = availability.ParseOverlapPolicy("Strict")
	require.NoError(t, err)
	assert.Equal(t, availability.StrictOverlap, p)

	_, err = availability.ParseOverlapPolicy("fuzzy")
	require.Error(t, err)
}

func TestIsWithinFree(t *testing.T) {
	free := []availability.Interval{{Start: 32400, End: 43200}, {Start: 46800, End: 61200}}

	assert.True(t, availability.IsWithinFree(availability.Interval{Start: 32400, End: 34200}, free))
	assert.True(t, availability.IsWithinFree(availability.Interval{Start: 59400, End: 61200}, free))
	assert.False(t, availability.IsWithinFree(availability.Interval{Start: 60000, End: 61800}, free))
	assert.False(t, availability.IsWithinFree(availability.Interval{Start: 42300, End: 47700}, free))
	assert.False(t, availability.IsWithinFree(availability.Interval{Start: 32400, End: 34200}, nil))
}

func TestSpanOffsets(t *testing.T) {
	day, date, in := availability.Span{Start: mondayMidnight + 85500, End: mondayMidnight + 87300}.Offsets()
	assert.Equal(t, availability.Monday, day)
	assert.Equal(t, availability.Date("2024-06-10"), date)
	assert.Equal(t, availability.Interval{Start: 85500, End: 87300}, in)
}

func TestWeeklySlotsJSON(t *testing.T) {
	weekly := availability.WeeklySlots{availability.Monday: {{Start: 32400, End: 61200}}}
	b, err := json.Marshal(weekly)
	require.NoError(t, err)
	assert.JSONEq(t, `{"MONDAY":[{"start":32400,"end":61200}]}`, string(b))

	var decoded availability.WeeklySlots
	require.NoError(t, json.Unmarshal([]byte(`{"friday":[{"start":0,"end":3600}]}`), &decoded))
	assert.Equal(t, []availability.Interval{{Start: 0, End: 3600}}, decoded[availability.Friday])

	var col availability.WeeklySlots
	require.NoError(t, col.Scan(b))
	assert.Equal(t, weekly, col)

	v, err := availability.WeeklySlots(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)
}

func TestScheduleValidate(t *testing.T) {
	require.NoError(t, availability.DefaultWeeklyAvailability().Validate())
	require.Error(t, availability.WeeklySlots{availability.Monday: {{Start: 100, End: 100}}}.Validate())
	require.Error(t, availability.WeeklySlots{availability.Monday: {{Start: 0, End: availability.SecondsPerDay + 1}}}.Validate())
	require.Error(t, availability.DateSlots{"10-06-2024": {{Start: 0, End: 60}}}.Validate())
	require.NoError(t, availability.DateSlots{"2024-06-10": {{Start: 0, End: 60}}}.Validate())
}

func TestBookedDaysAdd(t *testing.T) {
	var booked availability.BookedDays
	first := availability.Span{Start: mondayMidnight + 32400, End: mondayMidnight + 34200}
	next := booked.Add(first)
	assert.Nil(t, booked)
	assert.Equal(t, []availability.Span{first}, next["2024-06-10"])

	second := availability.Span{Start: mondayMidnight - 3600, End: mondayMidnight - 1800}
	after := next.Add(second)
	assert.Len(t, next["2024-06-10"], 1)
	assert.Equal(t, []availability.Span{second, first}, after.All())
}

func TestExpandWeekly(t *testing.T) {
	from := time.Unix(mondayMidnight+3600, 0).UTC()
	to := from.AddDate(0, 0, 7)

	spans, err := availability.ExpandWeekly(availability.DefaultWeeklyAvailability(), from, to)
	require.NoError(t, err)
	require.Len(t, spans, 5)
	assert.Equal(t, availability.Span{Start: mondayMidnight + 32400, End: mondayMidnight + 61200}, spans[0])
	assert.Equal(t, availability.Span{Start: mondayMidnight + 4*86400 + 32400, End: mondayMidnight + 4*86400 + 61200}, spans[4])

	spans, err = availability.ExpandWeekly(availability.DefaultWeeklyAvailability(), to, from)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestExpandDates(t *testing.T) {
	dates := availability.DateSlots{
		"2024-06-10": {{Start: 36000, End: 39600}},
		"2024-07-01": {{Start: 0, End: 3600}},
	}
	from := time.Unix(mondayMidnight, 0).UTC()
	spans, err := availability.ExpandDates(dates, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, []availability.Span{{Start: mondayMidnight + 36000, End: mondayMidnight + 39600}}, spans)
}
