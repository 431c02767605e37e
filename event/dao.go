package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrOwnerNotFound = errors.New("owner not found")

const selectEvents = `SELECT id, user_id, name, window_start, window_end, slot_duration_minutes, free_weekly, booked_weekly, free_dates, booked_dates, version, created_at FROM events`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	if err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.WindowStart, &e.WindowEnd, &e.SlotDurationMinutes,
		&e.FreeWeekly, &e.BookedWeekly, &e.FreeDates, &e.BookedDates, &e.Version, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent validates the event, rejects a duplicate name for the same
// owner and inserts it with version 1.
func (a *Accessor) CreateEvent(ctx context.Context, event Event, now time.Time) (*Event, error) {
	event.ApplyDefaults()
	if err := event.Validate(); err != nil {
		return nil, err
	}

	existing, err := a.FindEventByNameAndOwner(ctx, event.Name, event.UserID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEvent
	}

	event.ID = uuid.New()
	event.Version = 1
	event.CreatedAt = now

	query := `INSERT INTO events (id, user_id, name, window_start, window_end, slot_duration_minutes, free_weekly, booked_weekly, free_dates, booked_dates, version, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := a.db.ExecContext(ctx, query, event.ID, event.UserID, event.Name, event.WindowStart, event.WindowEnd,
		event.SlotDurationMinutes, event.FreeWeekly, event.BookedWeekly, event.FreeDates, event.BookedDates,
		event.Version, event.CreatedAt); err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}

	return &event, nil
}

func (a *Accessor) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	row := a.db.QueryRowContext(ctx, selectEvents+` WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return event, nil
}

func (a *Accessor) FindEventByNameAndOwner(ctx context.Context, name string, userID uuid.UUID) (*Event, error) {
	row := a.db.QueryRowContext(ctx, selectEvents+` WHERE name = $1 AND user_id = $2`, name, userID)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan: %w", err)
	}
	return event, nil
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveEvent writes every mutable column if the stored version still matches
// event.Version, and returns the event with its version bumped.
func (a *Accessor) SaveEvent(ctx context.Context, event Event) (*Event, error) {
	return SaveEventWith(ctx, a.db, event)
}

// SaveEventWith runs the versioned update on ex, so callers can include it in
// a transaction.
func SaveEventWith(ctx context.Context, ex Execer, event Event) (*Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	query := `UPDATE events SET name = $1, window_start = $2, window_end = $3, slot_duration_minutes = $4, free_weekly = $5, booked_weekly = $6, free_dates = $7, booked_dates = $8, version = version + 1 WHERE id = $9 AND version = $10`
	res, err := ex.ExecContext(ctx, query, event.Name, event.WindowStart, event.WindowEnd, event.SlotDurationMinutes,
		event.FreeWeekly, event.BookedWeekly, event.FreeDates, event.BookedDates, event.ID, event.Version)
	if err != nil {
		return nil, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrStaleEvent
	}

	event.Version++
	return &event, nil
}

// ListActiveEvents returns the owner's events whose booking window contains
// now.
func (a *Accessor) ListActiveEvents(ctx context.Context, userID uuid.UUID, now time.Time) ([]Event, error) {
	owner, err := a.userAccessor.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	rows, err := a.db.QueryContext(ctx, selectEvents+` WHERE user_id = $1 AND window_start < $2 AND window_end > $2 ORDER BY window_start`, userID, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("query context: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return events, nil
}

func (a *Accessor) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM events WHERE id = $1`
	if _, err := a.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("exec context: %w", err)
	}
	return nil
}

// DeleteExpiredEvents removes events whose window closed before the given
// epoch second and reports how many were deleted.
func (a *Accessor) DeleteExpiredEvents(ctx context.Context, before int64) (int64, error) {
	query := `DELETE FROM events WHERE window_end < $1`
	res, err := a.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("exec context: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
