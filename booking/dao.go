package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"calendar-booking/event"

	"github.com/google/uuid"
)

const selectBookings = `SELECT id, event_id, user_id, slot_start, slot_end, booker_name, booker_email, booker_phone, created_at FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*Booking, error) {
	var b Booking
	if err := row.Scan(&b.ID, &b.EventID, &b.UserID, &b.SlotStart, &b.SlotEnd,
		&b.Booker.Name, &b.Booker.Email, &b.Booker.Phone, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CommitBooking saves the event with its new busy span and inserts the
// booking in one transaction. Nothing is written when either step fails.
func (a *Accessor) CommitBooking(ctx context.Context, e event.Event, b Booking) (*event.Event, *Booking, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	saved, err := event.SaveEventWith(ctx, tx, e)
	if err != nil {
		return nil, nil, fmt.Errorf("save event: %w", err)
	}
	if err := insertBooking(ctx, tx, b); err != nil {
		return nil, nil, fmt.Errorf("save booking: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return saved, &b, nil
}

func insertBooking(ctx context.Context, ex event.Execer, b Booking) error {
	query := `INSERT INTO bookings (id, event_id, user_id, slot_start, slot_end, booker_name, booker_email, booker_phone, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := ex.ExecContext(ctx, query, b.ID, b.EventID, b.UserID, b.SlotStart, b.SlotEnd,
		b.Booker.Name, b.Booker.Email, b.Booker.Phone, b.CreatedAt); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

func (a *Accessor) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := a.db.QueryRowContext(ctx, selectBookings+` WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return b, nil
}

// ListBookings returns the bookings of one event ordered by slot start.
func (a *Accessor) ListBookings(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	rows, err := a.db.QueryContext(ctx, selectBookings+` WHERE event_id = $1 ORDER BY slot_start`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	bookings := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return bookings, nil
}
