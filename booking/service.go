package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"calendar-booking/availability"
	"calendar-booking/event"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	CounterBooked       = "eventBooked"
	CounterBookedFailed = "eventBookedFailed"
)

type EventStore interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*event.Event, error)
}

// BookingStore persists a booking together with the event carrying its busy
// span. Either both writes land or neither does.
type BookingStore interface {
	CommitBooking(ctx context.Context, e event.Event, b Booking) (*event.Event, *Booking, error)
}

// MetricsSink receives named counters. Implementations must be safe for
// concurrent use.
type MetricsSink interface {
	Increment(ctx context.Context, name string, tags map[string]string)
}

// Locker serializes work per key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type nopMetrics struct{}

func (nopMetrics) Increment(context.Context, string, map[string]string) {}

// Confirmation is returned by a successful Book.
type Confirmation struct {
	Booking  Booking     `json:"booking"`
	Decision Decision    `json:"decision"`
	Event    event.Event `json:"-"`
}

type Service struct {
	events   EventStore
	bookings BookingStore
	metrics  MetricsSink
	locker   Locker
	policy   availability.OverlapPolicy
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*Service)

func WithMetrics(m MetricsSink) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLocker(l Locker) Option {
	return func(s *Service) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithOverlapPolicy(p availability.OverlapPolicy) Option {
	return func(s *Service) { s.policy = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(events EventStore, bookings BookingStore, opts ...Option) *Service {
	s := &Service{
		events:   events,
		bookings: bookings,
		metrics:  nopMetrics{},
		locker:   NewLocalLocker(),
		policy:   availability.EndpointOverlap,
		tracer:   otel.Tracer("calendar-booking/booking"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() availability.OverlapPolicy {
	return s.policy
}

// Check runs validation and both layers against e without committing
// anything. Date-specific entries are consulted before the weekly template in
// both the overlap and the availability phase.
func (s *Service) Check(e *event.Event, req Request) (Decision, error) {
	d := Decision{Stage: Received, Trail: []Stage{Received}}
	if err := validateRequest(e, req); err != nil {
		return d.reject(""), err
	}
	d.advance(Validated)

	candidate := req.Span()
	if s.policy.HasBookedSpanOverlap(candidate, e.BookedDates.All()) {
		return d.reject(LayerDate), &ConflictError{Layer: LayerDate}
	}
	d.advance(DayOverlapChecked)

	day, date, offsets := candidate.Offsets()
	if availability.IsWithinFree(offsets, e.FreeDates[date]) {
		d.advance(DayAvailabilityChecked)
		d.Path = LayerDate
		return d, nil
	}

	if s.policy.HasBookedOverlap(offsets, e.BookedWeekly[day]) {
		return d.reject(LayerWeekly), &ConflictError{Layer: LayerWeekly}
	}
	d.advance(WeekOverlapChecked)

	if availability.IsWithinFree(offsets, e.FreeWeekly[day]) {
		d.advance(WeekAvailabilityChecked)
		d.Path = LayerWeekly
		return d, nil
	}
	return d.reject(LayerWeekly), ErrNoAvailableSlot
}

func validateRequest(e *event.Event, req Request) error {
	if req.SlotEnd <= req.SlotStart {
		return &event.ValidationError{Reason: "slot end must be after slot start"}
	}
	span := req.SlotEnd - req.SlotStart
	if span%60 != 0 || availability.DurationMinutes(req.SlotStart, req.SlotEnd) != int64(e.SlotDurationMinutes) {
		return &event.ValidationError{Reason: fmt.Sprintf("slot must span exactly %d minutes", e.SlotDurationMinutes)}
	}
	if e.WindowStart >= req.SlotStart || e.WindowEnd <= req.SlotEnd {
		return &event.ValidationError{Reason: "slot must fall inside the event window"}
	}
	return nil
}

// Book reserves the requested slot. The read-check-commit sequence runs under
// the per-event lock, and the commit additionally rejects a stale version.
func (s *Service) Book(ctx context.Context, req Request) (*Confirmation, error) {
	ctx, span := s.tracer.Start(ctx, "booking.Book", trace.WithAttributes(
		attribute.String("event.id", req.EventID.String()),
		attribute.Int64("slot.start", req.SlotStart),
		attribute.Int64("slot.end", req.SlotEnd),
		attribute.String("overlap.policy", s.policy.String()),
	))
	defer span.End()

	conf, err := s.book(ctx, span, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return conf, nil
}

func (s *Service) book(ctx context.Context, span trace.Span, req Request) (*Confirmation, error) {
	unlock, err := s.locker.Lock(ctx, req.EventID.String())
	if err != nil {
		return nil, fmt.Errorf("lock event: %w", err)
	}
	defer unlock()

	e, err := s.events.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return nil, ErrEventNotFound
	}

	tags := map[string]string{"eventId": e.ID.String()}
	decision, err := s.Check(e, req)
	for _, stage := range decision.Trail {
		span.AddEvent(stage.String())
	}
	span.SetAttributes(attribute.String("booking.path", string(decision.Path)))
	if err != nil {
		if errors.Is(err, ErrBookingConflict) {
			s.metrics.Increment(ctx, CounterBookedFailed, tags)
		}
		return nil, err
	}

	updated := *e
	updated.BookedDates = e.BookedDates.Add(req.Span())
	saved, record, err := s.bookings.CommitBooking(ctx, updated, Booking{
		ID:        uuid.New(),
		EventID:   e.ID,
		UserID:    e.UserID,
		SlotStart: req.SlotStart,
		SlotEnd:   req.SlotEnd,
		Booker:    req.Booker,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}

	decision.advance(Booked)
	span.AddEvent(Booked.String())
	s.metrics.Increment(ctx, CounterBooked, tags)

	return &Confirmation{Booking: *record, Decision: decision, Event: *saved}, nil
}

// OpenSlots lists every slot Check would accept in the days starting at the
// UTC date of from, stepping through the free windows in slot-sized
// increments.
func (s *Service) OpenSlots(e *event.Event, from time.Time, days int) ([]availability.Span, error) {
	if days <= 0 {
		return nil, nil
	}
	if e.SlotDurationMinutes <= 0 {
		return nil, &event.ValidationError{Reason: "slot duration must be greater than 0"}
	}
	to := from.AddDate(0, 0, days)

	dated, err := availability.ExpandDates(e.FreeDates, from, to)
	if err != nil {
		return nil, fmt.Errorf("expand dates: %w", err)
	}
	weekly, err := availability.ExpandWeekly(e.FreeWeekly, from, to)
	if err != nil {
		return nil, fmt.Errorf("expand weekly: %w", err)
	}

	step := int64(e.SlotDurationMinutes) * 60
	seen := make(map[int64]bool)
	slots := []availability.Span{}
	for _, window := range append(dated, weekly...) {
		for start := window.Start; start+step <= window.End; start += step {
			if seen[start] {
				continue
			}
			req := Request{EventID: e.ID, SlotStart: start, SlotEnd: start + step}
			if _, err := s.Check(e, req); err != nil {
				continue
			}
			seen[start] = true
			slots = append(slots, req.Span())
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots, nil
}
