package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrTryAgain wraps a failed insert; the account may be created by retrying
// later.
var ErrTryAgain = errors.New("unable to create user, please re-try after some time")

// CreateUser returns the existing account when the email is already
// registered. created reports whether a new row was inserted.
func (a *Accessor) CreateUser(ctx context.Context, u User, now time.Time) (user User, created bool, err error) {
	if err := u.Validate(); err != nil {
		return User{}, false, err
	}

	existing, err := a.GetUserByEmail(ctx, u.Email)
	if err != nil {
		return User{}, false, fmt.Errorf("get user by email: %w", err)
	}
	if existing != nil {
		return *existing, false, nil
	}

	u.ID = uuid.New()
	u.Active = true
	u.CreatedAt = now

	query := `INSERT INTO users (id, name, email, mobile_number, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := a.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.MobileNumber, u.Active, u.CreatedAt); err != nil {
		return User{}, false, fmt.Errorf("%w: %w", ErrTryAgain, err)
	}

	return u, true, nil
}

func (a *Accessor) GetUsers(ctx context.Context) ([]User, error) {
	users := []User{}

	query := `SELECT id, name, email, mobile_number, active, created_at FROM users`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.MobileNumber, &user.Active, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return users, nil
}

func (a *Accessor) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, name, email, mobile_number, active, created_at FROM users WHERE id = $1`
	return a.getOne(ctx, query, id)
}

func (a *Accessor) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, name, email, mobile_number, active, created_at FROM users WHERE email = $1`
	return a.getOne(ctx, query, email)
}

func (a *Accessor) getOne(ctx context.Context, query string, arg any) (*User, error) {
	var user User
	row := a.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.MobileNumber, &user.Active, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return &user, nil
}
