package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"calendar-booking/availability"
	"calendar-booking/calendar"
	"calendar-booking/event"

	"github.com/google/uuid"
)

const (
	counterEventCreated = "eventCreated"
	defaultSlotDays     = 7
	maxSlotDays         = 62
)

// createEventRequest is the API DTO for a new event. The owner comes from
// user_id or, when absent, the X-User-Id header.
type createEventRequest struct {
	UserID              string                   `json:"user_id"`
	Name                string                   `json:"name"`
	WindowStart         int64                    `json:"event_start"`
	WindowEnd           int64                    `json:"event_end"`
	SlotDurationMinutes int                      `json:"slot_duration_mins"`
	FreeWeekly          availability.WeeklySlots `json:"free_weekly"`
	BookedWeekly        availability.WeeklySlots `json:"booked_weekly"`
	FreeDates           availability.DateSlots   `json:"free_dates"`
}

func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rawOwner := req.UserID
	if rawOwner == "" {
		rawOwner = r.Header.Get("X-User-Id")
	}
	ownerID, err := uuid.Parse(rawOwner)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	owner, err := a.users.GetUser(r.Context(), ownerID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if owner == nil {
		a.Response(w, http.StatusNotFound, "user not found")
		return
	}

	payload := event.Event{
		UserID:              ownerID,
		Name:                req.Name,
		WindowStart:         req.WindowStart,
		WindowEnd:           req.WindowEnd,
		SlotDurationMinutes: req.SlotDurationMinutes,
		FreeWeekly:          req.FreeWeekly,
		BookedWeekly:        req.BookedWeekly,
		FreeDates:           req.FreeDates,
	}
	if payload.SlotDurationMinutes == 0 {
		payload.SlotDurationMinutes = a.defaultSlotMinutes
	}

	evt, err := a.events.CreateEvent(r.Context(), payload, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}

	a.increment(r.Context(), counterEventCreated, map[string]string{"userId": ownerID.String()})
	a.Response(w, http.StatusCreated, evt)
}

func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
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

	// Fetch organizer user
	organizer, err := a.users.GetUser(r.Context(), evt.UserID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if organizer == nil {
		a.Response(w, http.StatusInternalServerError, "organizer not found")
		return
	}

	response := map[string]any{
		"event":     evt,
		"organizer": organizer,
	}
	a.Response(w, http.StatusOK, response)
}

func (a *API) updateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := a.pathID(w, r, "event")
	if !ok {
		return
	}

	var patch event.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	unlock, err := a.lockEvent(r, eventID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	defer unlock()

	existing, err := a.events.GetEvent(r.Context(), eventID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if existing == nil {
		a.Response(w, http.StatusNotFound, "event not found")
		return
	}

	updated, err := a.events.SaveEvent(r.Context(), event.Merge(*existing, patch))
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, updated)
}

func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := a.pathID(w, r, "event")
	if !ok {
		return
	}

	e, err := a.events.GetEvent(r.Context(), eventID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if e == nil {
		a.Response(w, http.StatusNotFound, "event not found")
		return
	}

	err = a.events.DeleteEvent(r.Context(), e.ID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusNoContent, nil)
}

type openSlotsResponse struct {
	From  availability.Date   `json:"from"`
	Days  int                 `json:"days"`
	Slots []availability.Span `json:"slots"`
}

// getOpenSlots lists bookable slots starting at ?from=YYYY-MM-DD (default
// today) for ?days=N days.
func (a *API) getOpenSlots(w http.ResponseWriter, r *http.Request) {
	eventID, ok := a.pathID(w, r, "event")
	if !ok {
		return
	}

	from := a.now().UTC()
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			a.Response(w, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		from = parsed
	}
	days := defaultSlotDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSlotDays {
			a.Response(w, http.StatusBadRequest, "days must be between 1 and "+strconv.Itoa(maxSlotDays))
			return
		}
		days = n
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

	slots, err := a.service.OpenSlots(evt, from, days)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, openSlotsResponse{
		From:  availability.DateOf(from.Unix()),
		Days:  days,
		Slots: slots,
	})
}

func (a *API) getCalendar(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar.Feed(*evt, a.now())))
}
