package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength   = 100
	maxMobileLength = 12
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	MobileNumber string    `json:"mobile_number"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if len(u.MobileNumber) > maxMobileLength {
		return errors.New("invalid mobile number")
	}
	if u.Name == "" || len(u.Name) > maxNameLength {
		return errors.New("invalid name provided")
	}
	return nil
}
