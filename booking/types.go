package booking

import (
	"fmt"
	"time"

	"calendar-booking/availability"

	"github.com/google/uuid"
)

// Booker is the contact information of whoever reserved the slot. The engine
// treats it as opaque.
type Booker struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is an immutable record of a committed reservation.
type Booking struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	SlotStart int64     `json:"slot_start"`
	SlotEnd   int64     `json:"slot_end"`
	Booker    Booker    `json:"booker"`
	CreatedAt time.Time `json:"created_at"`
}

func (b Booking) Span() availability.Span {
	return availability.Span{Start: b.SlotStart, End: b.SlotEnd}
}

// Request asks for the slot [SlotStart, SlotEnd) on an event.
type Request struct {
	EventID   uuid.UUID `json:"event_id"`
	SlotStart int64     `json:"slot_start"`
	SlotEnd   int64     `json:"slot_end"`
	Booker    Booker    `json:"booker"`
}

func (r Request) Span() availability.Span {
	return availability.Span{Start: r.SlotStart, End: r.SlotEnd}
}

// Layer names the recurrence layer that decided a booking.
type Layer string

const (
	LayerDate   Layer = "date"
	LayerWeekly Layer = "weekly"
)

// Stage is a step of the booking state machine.
type Stage int

const (
	Received Stage = iota
	Validated
	DayOverlapChecked
	DayAvailabilityChecked
	WeekOverlapChecked
	WeekAvailabilityChecked
	Booked
	Rejected
)

var stageNames = [...]string{
	"received",
	"validated",
	"day_overlap_checked",
	"day_availability_checked",
	"week_overlap_checked",
	"week_availability_checked",
	"booked",
	"rejected",
}

func (s Stage) String() string {
	if s < Received || s > Rejected {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Decision is the outcome of running a request through the checks. Trail
// lists every stage visited, ending with Stage. Path names the layer that
// accepted or rejected the request.
type Decision struct {
	Stage Stage   `json:"stage"`
	Path  Layer   `json:"path,omitempty"`
	Trail []Stage `json:"trail"`
}

func (d *Decision) advance(s Stage) {
	d.Stage = s
	d.Trail = append(d.Trail, s)
}

func (d Decision) reject(layer Layer) Decision {
	d.advance(Rejected)
	d.Path = layer
	return d
}
