package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"calendar-booking/booking"
	"calendar-booking/calendar"
	"calendar-booking/event"
	"calendar-booking/user"

	"github.com/google/uuid"
)

// Message is a booking confirmation addressed to the booker.
type Message struct {
	BookingID uuid.UUID `json:"booking_id"`
	EventID   uuid.UUID `json:"event_id"`
	EventName string    `json:"event_name"`
	SlotStart int64     `json:"slot_start"`
	SlotEnd   int64     `json:"slot_end"`
	From      string    `json:"from"`
	FromName  string    `json:"from_name"`
	To        string    `json:"to"`
	ToName    string    `json:"to_name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Invite    string    `json:"invite"`
}

var bodyTemplate = template.Must(template.New("body").Parse(`Hi {{.ToName}},

Your interaction is confirmed with {{.FromName}} for {{.EventName}} between {{.Start}} and {{.End}}.

Thank you.
`))

// Compose builds the confirmation for a committed booking, including an
// iCalendar invite.
func Compose(b booking.Booking, e event.Event, owner user.User, now time.Time) (Message, error) {
	start := time.Unix(b.SlotStart, 0).UTC().Format(time.RFC3339)
	end := time.Unix(b.SlotEnd, 0).UTC().Format(time.RFC3339)

	msg := Message{
		BookingID: b.ID,
		EventID:   e.ID,
		EventName: e.Name,
		SlotStart: b.SlotStart,
		SlotEnd:   b.SlotEnd,
		From:      owner.Email,
		FromName:  owner.Name,
		To:        b.Booker.Email,
		ToName:    b.Booker.Name,
		Subject:   fmt.Sprintf("Confirmed: %s on %s", e.Name, start),
		Invite:    calendar.Invite(b, e, owner, now),
	}

	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, struct {
		ToName, FromName, EventName, Start, End string
	}{msg.ToName, msg.FromName, msg.EventName, start, end})
	if err != nil {
		return Message{}, fmt.Errorf("execute template: %w", err)
	}
	msg.Body = buf.String()
	return msg, nil
}
