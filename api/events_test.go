package api_test

import (
	"bytes"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"calendar-booking/api"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-10 00:00 UTC, a Monday.
const mondayMidnight int64 = 1717977600

var eventColumns = []string{"id", "user_id", "name", "window_start", "window_end", "slot_duration_minutes",
	"free_weekly", "booked_weekly", "free_dates", "booked_dates", "version", "created_at"}

const (
	selectEventByID    = `SELECT id, user_id, name, window_start, window_end, slot_duration_minutes, free_weekly, booked_weekly, free_dates, booked_dates, version, created_at FROM events WHERE id = $1`
	selectEventByName  = `SELECT id, user_id, name, window_start, window_end, slot_duration_minutes, free_weekly, booked_weekly, free_dates, booked_dates, version, created_at FROM events WHERE name = $1 AND user_id = $2`
	insertEventQuery   = `INSERT INTO events (id, user_id, name, window_start, window_end, slot_duration_minutes, free_weekly, booked_weekly, free_dates, booked_dates, version, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	updateEventQuery   = `UPDATE events SET name = $1, window_start = $2, window_end = $3, slot_duration_minutes = $4, free_weekly = $5, booked_weekly = $6, free_dates = $7, booked_dates = $8, version = version + 1 WHERE id = $9 AND version = $10`
	deleteEventQuery   = `DELETE FROM events WHERE id = $1`
	bookedNineOClock   = mondayMidnight + 9*3600
	bookedNineThirty   = mondayMidnight + 9*3600 + 1800
	tuesdayDateFreeKey = "2024-06-11"
)

// eventRow is a week-long event, free Mondays 09:00-17:00 and Tuesday
// 2024-06-11 10:00-11:00, with Monday 09:00-09:30 already booked.
func eventRow(id, owner uuid.UUID, version int) *sqlmock.Rows {
	return sqlmock.NewRows(eventColumns).AddRow(id.String(), owner.String(), "Intro Call",
		mondayMidnight, mondayMidnight+7*86400, 30,
		[]byte(`{"MONDAY":[{"start":32400,"end":61200}]}`), []byte(`{}`),
		[]byte(`{"`+tuesdayDateFreeKey+`":[{"start":36000,"end":39600}]}`),
		[]byte(fmt.Sprintf(`{"2024-06-10":[{"start":%d,"end":%d}]}`, bookedNineOClock, bookedNineThirty)),
		version, fixedNow)
}

func TestEventsAPI(t *testing.T) {
	t.Parallel()

	t.Run("create event", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		ownerID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnRows(userRow(ownerID, "Alice", "alice@example.com"))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByName)).
			WithArgs("Intro Call", ownerID).
			WillReturnError(sql.ErrNoRows)
		dbMock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body := fmt.Sprintf(`{"user_id":%q,"name":"Intro Call","event_start":%d,"event_end":%d}`,
			ownerID, mondayMidnight, mondayMidnight+7*86400)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusCreated, rec.Code)

		created, ok := decode(t, rec).Response.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Intro Call", created["name"])
		assert.Equal(t, ownerID.String(), created["user_id"])
		assert.EqualValues(t, 30, created["slot_duration_mins"])
		assert.EqualValues(t, 1, created["version"])
		assert.Contains(t, created["free_weekly"], "MONDAY")
	})

	t.Run("create event owner from header", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t, api.WithDefaultSlotMinutes(45))

		ownerID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnRows(userRow(ownerID, "Alice", "alice@example.com"))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByName)).
			WithArgs("Standup", ownerID).
			WillReturnError(sql.ErrNoRows)
		dbMock.ExpectExec(regexp.QuoteMeta(insertEventQuery)).
			WithArgs(sqlmock.AnyArg(), ownerID, "Standup", mondayMidnight, mondayMidnight+86400, 45,
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), 1, fixedNow).
			WillReturnResult(sqlmock.NewResult(1, 1))

		body := fmt.Sprintf(`{"name":"Standup","event_start":%d,"event_end":%d}`, mondayMidnight, mondayMidnight+86400)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(body))
		req.Header.Set("X-User-Id", ownerID.String())
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("create event unknown owner", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		ownerID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnError(sql.ErrNoRows)

		body := fmt.Sprintf(`{"user_id":%q,"name":"Intro Call","event_start":1,"event_end":2}`, ownerID)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create event duplicate", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		ownerID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnRows(userRow(ownerID, "Alice", "alice@example.com"))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByName)).
			WithArgs("Intro Call", ownerID).
			WillReturnRows(eventRow(uuid.New(), ownerID, 1))

		body := fmt.Sprintf(`{"user_id":%q,"name":"Intro Call","event_start":%d,"event_end":%d}`,
			ownerID, mondayMidnight, mondayMidnight+7*86400)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("create event invalid window", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		ownerID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnRows(userRow(ownerID, "Alice", "alice@example.com"))

		body := fmt.Sprintf(`{"user_id":%q,"name":"Intro Call","event_start":10,"event_end":5}`, ownerID)
		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("create event missing owner", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		req := httptest.NewRequest(http.MethodPost, "/api/events", bytes.NewBufferString(`{"name":"Intro Call"}`))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get event", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 1))
		dbMock.ExpectQuery(regexp.QuoteMeta(selectUserByID)).
			WithArgs(ownerID).
			WillReturnRows(userRow(ownerID, "Alice", "alice@example.com"))

		req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String(), nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)

		respMap, ok := decode(t, rec).Response.(map[string]any)
		require.True(t, ok)
		evt, ok := respMap["event"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, eventID.String(), evt["id"])
		organizer, ok := respMap["organizer"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Alice", organizer["name"])
	})

	t.Run("get event not found", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID := uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnError(sql.ErrNoRows)

		req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String(), nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update event", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 2))
		dbMock.ExpectExec(regexp.QuoteMeta(updateEventQuery)).
			WithArgs("Renamed", mondayMidnight, mondayMidnight+7*86400, 30,
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), eventID, 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest(http.MethodPatch, "/api/events/"+eventID.String(), bytes.NewBufferString(`{"name":"Renamed"}`))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)
		updated, ok := decode(t, rec).Response.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Renamed", updated["name"])
		assert.EqualValues(t, 3, updated["version"])
	})

	t.Run("update event stale", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 2))
		dbMock.ExpectExec(regexp.QuoteMeta(updateEventQuery)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := httptest.NewRequest(http.MethodPatch, "/api/events/"+eventID.String(), bytes.NewBufferString(`{"slot_duration_mins":60}`))
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete event", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 1))
		dbMock.ExpectExec(regexp.QuoteMeta(deleteEventQuery)).
			WithArgs(eventID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := httptest.NewRequest(http.MethodDelete, "/api/events/"+eventID.String(), nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("open slots", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 1))

		req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String()+"/slots?from=2024-06-10&days=1", nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)

		respMap, ok := decode(t, rec).Response.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "2024-06-10", respMap["from"])
		slots, ok := respMap["slots"].([]any)
		require.True(t, ok)
		// 09:00-17:00 in 30 minute steps, minus the booked 09:00 slot.
		require.Len(t, slots, 15)
		first, ok := slots[0].(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, bookedNineThirty, first["start"])
	})

	t.Run("open slots invalid days", func(t *testing.T) {
		t.Parallel()
		a, _ := setupAPI(t)

		req := httptest.NewRequest(http.MethodGet, "/api/events/"+uuid.NewString()+"/slots?days=0", nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("calendar feed", func(t *testing.T) {
		t.Parallel()
		a, dbMock := setupAPI(t)

		eventID, ownerID := uuid.New(), uuid.New()
		dbMock.ExpectQuery(regexp.QuoteMeta(selectEventByID)).
			WithArgs(eventID).
			WillReturnRows(eventRow(eventID, ownerID, 1))

		req := httptest.NewRequest(http.MethodGet, "/api/events/"+eventID.String()+"/calendar.ics", nil)
		rec := httptest.NewRecorder()

		a.Router().ServeHTTP(rec, req)

		require.NoError(t, dbMock.ExpectationsWereMet())
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
		assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
		assert.Contains(t, rec.Body.String(), fmt.Sprintf("%s-%d@calendar-booking", eventID, bookedNineOClock))
	})
}
