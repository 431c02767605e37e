package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"calendar-booking/availability"
	"calendar-booking/booking"
	"calendar-booking/event"
	"calendar-booking/notify"
	"calendar-booking/user"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type API struct {
	root   *mux.Router
	router *mux.Router
	db     *sql.DB

	users    *user.Accessor
	events   *event.Accessor
	bookings *booking.Accessor
	service  *booking.Service

	logger             *zap.Logger
	metrics            booking.MetricsSink
	notifier           notify.Notifier
	locker             booking.Locker
	policy             availability.OverlapPolicy
	origins            []string
	defaultSlotMinutes int
	now                func() time.Time
}

type Option func(*API)

func WithLogger(l *zap.Logger) Option {
	return func(a *API) { a.logger = l }
}

func WithMetrics(m booking.MetricsSink) Option {
	return func(a *API) { a.metrics = m }
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *API) { a.notifier = n }
}

func WithLocker(l booking.Locker) Option {
	return func(a *API) { a.locker = l }
}

func WithOverlapPolicy(p availability.OverlapPolicy) Option {
	return func(a *API) { a.policy = p }
}

func WithAllowedOrigins(origins []string) Option {
	return func(a *API) { a.origins = origins }
}

func WithDefaultSlotMinutes(minutes int) Option {
	return func(a *API) { a.defaultSlotMinutes = minutes }
}

func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

func NewAPI(db *sql.DB, opts ...Option) *API {
	root := mux.NewRouter()
	a := &API{
		root:               root,
		router:             root.PathPrefix("/api").Subrouter(),
		db:                 db,
		logger:             zap.NewNop(),
		origins:            []string{"*"},
		defaultSlotMinutes: event.DefaultSlotDurationMinutes,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = notify.NewLogNotifier(a.logger)
	}
	if a.locker == nil {
		a.locker = booking.NewLocalLocker()
	}

	a.users = user.NewAccessor(db)
	a.events = event.NewAccessor(db, a.users)
	a.bookings = booking.NewAccessor(db)
	a.service = booking.NewService(a.events, a.bookings,
		booking.WithMetrics(a.metrics),
		booking.WithLocker(a.locker),
		booking.WithOverlapPolicy(a.policy),
		booking.WithClock(a.now),
	)
	return a
}

// Router exposes the bare router, without logging, tracing or CORS.
func (a *API) Router() http.Handler {
	return a.root
}

func (a *API) Handler() http.Handler {
	h := otelhttp.NewHandler(a.root, "calendar-booking")
	h = cors.New(cors.Options{
		AllowedOrigins: a.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-User-Id"},
	}).Handler(h)
	// Use Gorilla's built-in logging handler
	return handlers.LoggingHandler(os.Stdout, h)
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)
	a.router.HandleFunc("/ready", a.ready).Methods(http.MethodGet)

	a.router.HandleFunc("/users", a.createUser).Methods(http.MethodPost)
	a.router.HandleFunc("/users/{id}", a.getUser).Methods(http.MethodGet)
	a.router.HandleFunc("/users", a.getUsers).Methods(http.MethodGet)
	a.router.HandleFunc("/users/{id}/events", a.getUserEvents).Methods(http.MethodGet)

	a.router.HandleFunc("/events", a.createEvent).Methods(http.MethodPost)
	a.router.HandleFunc("/events/{id}", a.getEvent).Methods(http.MethodGet)
	a.router.HandleFunc("/events/{id}", a.updateEvent).Methods(http.MethodPatch)
	a.router.HandleFunc("/events/{id}", a.deleteEvent).Methods(http.MethodDelete)
	a.router.HandleFunc("/events/{id}/slots", a.getOpenSlots).Methods(http.MethodGet)
	a.router.HandleFunc("/events/{id}/calendar.ics", a.getCalendar).Methods(http.MethodGet)
	a.router.HandleFunc("/events/{id}/book", a.bookEvent).Methods(http.MethodPost)
	a.router.HandleFunc("/events/{id}/bookings", a.getEventBookings).Methods(http.MethodGet)

	a.router.HandleFunc("/bookings/{id}", a.getBooking).Methods(http.MethodGet)
}

// lockEvent takes the same per-event lock the booking service uses.
func (a *API) lockEvent(r *http.Request, id uuid.UUID) (func(), error) {
	return a.locker.Lock(r.Context(), id.String())
}

// pathID parses the {id} route variable, writing a 400 when it is missing or
// malformed.
func (a *API) pathID(w http.ResponseWriter, r *http.Request, kind string) (uuid.UUID, bool) {
	id := mux.Vars(r)["id"]
	if id == "" {
		a.Response(w, http.StatusBadRequest, kind+" ID is required")
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid "+kind+" ID")
		return uuid.Nil, false
	}
	return parsed, true
}
