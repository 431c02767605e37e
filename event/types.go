package event

import (
	"errors"
	"fmt"
	"time"

	"calendar-booking/availability"

	"github.com/google/uuid"
)

// DefaultSlotDurationMinutes applies when an event is created without a slot
// duration.
const DefaultSlotDurationMinutes = 30

var (
	ErrDuplicateEvent = errors.New("event already exists for this owner")
	// ErrStaleEvent is returned by SaveEvent when the stored version moved on
	// since the event was loaded.
	ErrStaleEvent = errors.New("event was modified concurrently")
)

// ValidationError reports a malformed event or booking request. It is always
// recoverable by the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Event is a bookable event type with its free and busy time.
type Event struct {
	ID                  uuid.UUID                `json:"id"`
	UserID              uuid.UUID                `json:"user_id"`
	Name                string                   `json:"name"`
	WindowStart         int64                    `json:"event_start"`
	WindowEnd           int64                    `json:"event_end"`
	SlotDurationMinutes int                      `json:"slot_duration_mins"`
	FreeWeekly          availability.WeeklySlots `json:"free_weekly,omitempty"`
	BookedWeekly        availability.WeeklySlots `json:"booked_weekly,omitempty"`
	FreeDates           availability.DateSlots   `json:"free_dates,omitempty"`
	BookedDates         availability.BookedDays  `json:"booked_dates,omitempty"`
	Version             int                      `json:"version"`
	CreatedAt           time.Time                `json:"created_at"`
}

func (e *Event) Validate() error {
	if e.Name == "" {
		return invalid("event name can't be empty")
	}
	if e.UserID == uuid.Nil {
		return invalid("user ID for event can't be empty")
	}
	if e.SlotDurationMinutes <= 0 {
		return invalid("slot duration must be greater than 0")
	}
	if e.WindowEnd <= e.WindowStart {
		return invalid("event end must be after event start")
	}
	if err := e.FreeWeekly.Validate(); err != nil {
		return invalid("free weekly slots: %v", err)
	}
	if err := e.BookedWeekly.Validate(); err != nil {
		return invalid("booked weekly slots: %v", err)
	}
	if err := e.FreeDates.Validate(); err != nil {
		return invalid("free dates: %v", err)
	}
	if err := e.BookedDates.Validate(); err != nil {
		return invalid("booked dates: %v", err)
	}
	return nil
}

// ApplyDefaults fills the slot duration and, when the owner supplied neither
// weekly nor date-specific free time, the default business-hours template.
func (e *Event) ApplyDefaults() {
	if e.SlotDurationMinutes == 0 {
		e.SlotDurationMinutes = DefaultSlotDurationMinutes
	}
	if len(e.FreeWeekly) == 0 && len(e.FreeDates) == 0 {
		e.FreeWeekly = availability.DefaultWeeklyAvailability()
	}
}

// ActiveAt reports whether the booking window strictly contains ts.
func (e *Event) ActiveAt(ts int64) bool {
	return e.WindowStart < ts && e.WindowEnd > ts
}

// Patch carries a partial update. Nil fields are left untouched. Booked dates
// are owned by the booking engine and cannot be patched.
type Patch struct {
	Name                *string                   `json:"name,omitempty"`
	WindowStart         *int64                    `json:"event_start,omitempty"`
	WindowEnd           *int64                    `json:"event_end,omitempty"`
	SlotDurationMinutes *int                      `json:"slot_duration_mins,omitempty"`
	FreeWeekly          *availability.WeeklySlots `json:"free_weekly,omitempty"`
	BookedWeekly        *availability.WeeklySlots `json:"booked_weekly,omitempty"`
	FreeDates           *availability.DateSlots   `json:"free_dates,omitempty"`
}

// Merge returns a copy of e with every non-nil patch field applied.
func Merge(e Event, p Patch) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.WindowStart != nil {
		e.WindowStart = *p.WindowStart
	}
	if p.WindowEnd != nil {
		e.WindowEnd = *p.WindowEnd
	}
	if p.SlotDurationMinutes != nil {
		e.SlotDurationMinutes = *p.SlotDurationMinutes
	}
	if p.FreeWeekly != nil {
		e.FreeWeekly = *p.FreeWeekly
	}
	if p.BookedWeekly != nil {
		e.BookedWeekly = *p.BookedWeekly
	}
	if p.FreeDates != nil {
		e.FreeDates = *p.FreeDates
	}
	return e
}
