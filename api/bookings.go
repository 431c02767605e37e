package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"calendar-booking/booking"
	"calendar-booking/notify"

	"go.uber.org/zap"
)

type bookRequest struct {
	SlotStart int64          `json:"slot_start"`
	SlotEnd   int64          `json:"slot_end"`
	Booker    booking.Booker `json:"booker"`
}

type dryRunResponse struct {
	Decision booking.Decision `json:"decision"`
}

// bookEvent books a slot. With ?dryRun=true the checks run without a commit;
// with ?sendEmail=true the booker is notified after a commit.
func (a *API) bookEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := a.pathID(w, r, "event")
	if !ok {
		return
	}

	dryRun, err := boolQuery(r, "dryRun")
	if err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}
	sendEmail, err := boolQuery(r, "sendEmail")
	if err != nil {
		a.Response(w, http.StatusBadRequest, err.Error())
		return
	}

	var body bookRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := booking.Request{
		EventID:   eventID,
		SlotStart: body.SlotStart,
		SlotEnd:   body.SlotEnd,
		Booker:    body.Booker,
	}

	if dryRun {
		evt, err := a.events.GetEvent(r.Context(), eventID)
		if err != nil {
			a.Error(w, r, err)
			return
		}
		if evt == nil {
			a.Response(w, http.StatusNotFound, "event not found")
			return
		}
		decision, err := a.service.Check(evt, req)
		if err != nil {
			a.Error(w, r, err)
			return
		}
		a.Response(w, http.StatusOK, dryRunResponse{Decision: decision})
		return
	}

	conf, err := a.service.Book(r.Context(), req)
	if err != nil {
		a.Error(w, r, err)
		return
	}

	if sendEmail {
		if err := a.sendConfirmation(r.Context(), conf); err != nil {
			a.logger.Warn("booking confirmation not sent",
				zap.String("booking_id", conf.Booking.ID.String()),
				zap.Error(err),
			)
		}
	}
	a.Response(w, http.StatusCreated, conf)
}

func (a *API) sendConfirmation(ctx context.Context, conf *booking.Confirmation) error {
	owner, err := a.users.GetUser(ctx, conf.Event.UserID)
	if err != nil {
		return fmt.Errorf("get owner: %w", err)
	}
	if owner == nil {
		return fmt.Errorf("owner %s not found", conf.Event.UserID)
	}
	msg, err := notify.Compose(conf.Booking, conf.Event, *owner, a.now())
	if err != nil {
		return fmt.Errorf("compose: %w", err)
	}
	if err := a.notifier.Notify(ctx, msg); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

type getBookingsResponse struct {
	Bookings []booking.Booking `json:"bookings"`
}

func (a *API) getEventBookings(w http.ResponseWriter, r *http.Request) {
	eventID, ok := a.pathID(w, r, "event")
	if !ok {
		return
	}

	evt, err := a.events.GetEvent(r.Context(), eventID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if evt == nil {
		a.Response(w, http.StatusNotFound, "event not found")
		return
	}

	bookings, err := a.bookings.ListBookings(r.Context(), eventID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getBookingsResponse{Bookings: bookings})
}

func (a *API) getBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := a.pathID(w, r, "booking")
	if !ok {
		return
	}

	b, err := a.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if b == nil {
		a.Response(w, http.StatusNotFound, "booking not found")
		return
	}
	a.Response(w, http.StatusOK, b)
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return v, nil
}
