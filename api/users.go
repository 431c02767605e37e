package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"calendar-booking/event"
	"calendar-booking/user"

	"go.uber.org/zap"
)

const counterUserRegistration = "userRegistration"

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var payload user.User

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.Response(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.Validate(); err != nil {
		a.Response(w, http.StatusBadRequest, "validate: "+err.Error())
		return
	}

	u, created, err := a.users.CreateUser(r.Context(), payload, a.now())
	if errors.Is(err, user.ErrTryAgain) {
		a.logger.Error("create user", zap.String("email", payload.Email), zap.Error(err))
		a.Response(w, http.StatusInternalServerError, user.ErrTryAgain.Error())
		return
	}
	if err != nil {
		a.Error(w, r, err)
		return
	}

	if !created {
		a.increment(r.Context(), counterUserRegistration, map[string]string{"type": "old"})
		a.Response(w, http.StatusOK, u)
		return
	}
	a.increment(r.Context(), counterUserRegistration, map[string]string{"type": "new"})
	a.Response(w, http.StatusCreated, u)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.pathID(w, r, "user")
	if !ok {
		return
	}

	u, err := a.users.GetUser(r.Context(), userID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	if u == nil {
		a.Response(w, http.StatusNotFound, "user not found")
		return
	}

	a.Response(w, http.StatusOK, u)
}

type getUsersResponse struct {
	Users []user.User `json:"users"`
}

func (a *API) getUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.GetUsers(r.Context())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	response := getUsersResponse{
		Users: users,
	}
	a.Response(w, http.StatusOK, response)
}

type getEventsResponse struct {
	Events []event.Event `json:"events"`
}

// getUserEvents lists the owner's events whose booking window is open now.
func (a *API) getUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.pathID(w, r, "user")
	if !ok {
		return
	}

	events, err := a.events.ListActiveEvents(r.Context(), userID, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getEventsResponse{Events: events})
}
