package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingConflict = errors.New("slot overlaps booked time")
	// ErrNoAvailableSlot means neither layer offers the slot, as opposed to
	// the slot being offered and already taken.
	ErrNoAvailableSlot = errors.New("no available slot")
	ErrEventNotFound   = errors.New("event not found")
)

// ConflictError is a booking conflict on a specific layer. It matches
// ErrBookingConflict with errors.Is.
type ConflictError struct {
	Layer Layer
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s layer", ErrBookingConflict, e.Layer)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrBookingConflict
}
