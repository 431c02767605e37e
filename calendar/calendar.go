package calendar

import (
	"fmt"
	"time"

	"calendar-booking/booking"
	"calendar-booking/event"
	"calendar-booking/user"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//calendar-booking//booking engine//EN"

// Invite renders a METHOD:REQUEST calendar carrying the confirmed booking, with
// the event owner as organizer and the booker as attendee.
func Invite(b booking.Booking, e event.Event, owner user.User, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodRequest)

	ev := cal.AddEvent(b.ID.String() + "@calendar-booking")
	ev.SetDtStampTime(now)
	ev.SetCreatedTime(b.CreatedAt)
	ev.SetStartAt(time.Unix(b.SlotStart, 0).UTC())
	ev.SetEndAt(time.Unix(b.SlotEnd, 0).UTC())
	ev.SetSummary(e.Name)
	ev.SetDescription(fmt.Sprintf("%s with %s", e.Name, owner.Name))
	ev.SetStatus(ical.ObjectStatusConfirmed)
	if owner.Email != "" {
		ev.SetOrganizer("mailto:"+owner.Email, ical.WithCN(owner.Name))
	}
	if b.Booker.Email != "" {
		ev.AddAttendee("mailto:"+b.Booker.Email, ical.WithCN(b.Booker.Name), ical.WithRSVP(true))
	}
	return cal.Serialize()
}

// Feed renders the busy time of an event, one VEVENT per booked span.
func Feed(e event.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetName(e.Name)

	for _, span := range e.BookedDates.All() {
		ev := cal.AddEvent(fmt.Sprintf("%s-%d@calendar-booking", e.ID, span.Start))
		ev.SetDtStampTime(now)
		ev.SetStartAt(time.Unix(span.Start, 0).UTC())
		ev.SetEndAt(time.Unix(span.End, 0).UTC())
		ev.SetSummary(e.Name)
		ev.SetStatus(ical.ObjectStatusConfirmed)
	}
	return cal.Serialize()
}
