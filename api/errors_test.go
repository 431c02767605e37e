package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"calendar-booking/booking"
	"calendar-booking/event"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &event.ValidationError{Reason: "bad"}, http.StatusBadRequest},
		{"event not found", booking.ErrEventNotFound, http.StatusNotFound},
		{"owner not found", fmt.Errorf("list: %w", event.ErrOwnerNotFound), http.StatusNotFound},
		{"date conflict", &booking.ConflictError{Layer: booking.LayerDate}, http.StatusConflict},
		{"duplicate event", event.ErrDuplicateEvent, http.StatusConflict},
		{"stale event", fmt.Errorf("save event: %w", event.ErrStaleEvent), http.StatusConflict},
		{"no slot", booking.ErrNoAvailableSlot, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
