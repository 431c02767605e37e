package event

import (
	"context"
	"database/sql"

	"calendar-booking/user"

	"github.com/google/uuid"
)

type UserAccessor interface {
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Accessor is the DB layer entrypoint for event queries.
type Accessor struct {
	db           *sql.DB
	userAccessor UserAccessor
}

func NewAccessor(db *sql.DB, userAccessor UserAccessor) *Accessor {
	return &Accessor{
		db:           db,
		userAccessor: userAccessor,
	}
}
