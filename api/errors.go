package api

import (
	"context"
	"errors"
	"net/http"

	"calendar-booking/booking"
	"calendar-booking/event"

	"go.uber.org/zap"
)

func statusFor(err error) int {
	var verr *event.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrEventNotFound), errors.Is(err, event.ErrOwnerNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrBookingConflict),
		errors.Is(err, event.ErrDuplicateEvent),
		errors.Is(err, event.ErrStaleEvent):
		return http.StatusConflict
	case errors.Is(err, booking.ErrNoAvailableSlot):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status its kind maps to. Server errors are logged.
func (a *API) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	a.Response(w, status, err.Error())
}

func (a *API) increment(ctx context.Context, name string, tags map[string]string) {
	if a.metrics != nil {
		a.metrics.Increment(ctx, name, tags)
	}
}
