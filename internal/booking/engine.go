package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
)

// lockWait bounds how long a booking waits for the per-slot lock before
// giving up.
const lockWait = 5 * time.Second

// Outcome classifies the result of a booking attempt.
type Outcome string

const (
	// OutcomeConfirmed means the appointment was written to the calendar.
	OutcomeConfirmed Outcome = Outcome(instrumentation.OutcomeConfirmed)

	// OutcomeRejected means the request was invalid (missing fields,
	// malformed date, slot not on the grid).
	OutcomeRejected Outcome = Outcome(instrumentation.OutcomeRejected)

	// OutcomeSlotTaken means the slot was already occupied at recheck time.
	OutcomeSlotTaken Outcome = Outcome(instrumentation.OutcomeSlotTaken)

	// OutcomeFailed means the calendar could not be read or written.
	OutcomeFailed Outcome = Outcome(instrumentation.OutcomeFailed)
)

// Gateway is the slice of the calendar client the engine depends on.
type Gateway interface {
	ListDayEvents(ctx context.Context, date string) ([]calendar.Event, error)
	InsertAppointment(ctx context.Context, appt calendar.Appointment) (calendar.Event, error)
}

// Request carries the details of a booking attempt.
type Request struct {
	CustomerName string
	Phone        string
	Service      string
	Date         string // YYYY-MM-DD
	Slot         string // HH:MM
}

// Result is the caller-facing outcome of a booking attempt. Message is
// always safe to relay to the caller verbatim.
type Result struct {
	Outcome Outcome
	Message string
	EventID string
}

// Engine books appointments on the clinic calendar.
type Engine struct {
	gateway Gateway
	catalog *catalog.Catalog
	locks   *slotLocks
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewEngine creates a booking engine.
func NewEngine(gateway Gateway, cat *catalog.Catalog, logger *slog.Logger, metrics *instrumentation.Metrics) *Engine {
	return &Engine{
		gateway: gateway,
		catalog: cat,
		locks:   newSlotLocks(),
		logger:  logger,
		metrics: metrics,
	}
}

// Book attempts to book the requested slot. It never returns an error:
// every failure mode maps to an Outcome with a message fit for the caller.
func (e *Engine) Book(ctx context.Context, req Request) Result {
	result := e.book(ctx, req)

	e.logger.Info("Booking attempt finished",
		logging.Operation("book_appointment"),
		logging.Date(req.Date),
		logging.Slot(req.Slot),
		logging.PhoneHash(req.Phone),
		logging.Outcome(string(result.Outcome)),
		logging.EventID(result.EventID))
	e.metrics.RecordBookingAttempt(ctx, string(result.Outcome))

	return result
}

func (e *Engine) book(ctx context.Context, req Request) Result {
	if msg, ok := e.validate(req); !ok {
		return Result{Outcome: OutcomeRejected, Message: msg}
	}

	slot := catalog.Slot(req.Slot)
	start, err := e.catalog.At(req.Date, slot)
	if err != nil {
		return Result{
			Outcome: OutcomeRejected,
			Message: "I couldn't understand that date. Please give it as year-month-day, like 2025-11-05.",
		}
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	release, err := e.locks.acquire(lockCtx, req.Date+" "+req.Slot)
	if err != nil {
		return Result{
			Outcome: OutcomeFailed,
			Message: "Sorry, I couldn't complete the booking right now. Please try again in a moment.",
		}
	}
	defer release()

	// Fresh read under the lock. A degraded guess is not good enough to
	// write an appointment against, so a read failure fails the booking.
	events, err := e.gateway.ListDayEvents(ctx, req.Date)
	if err != nil {
		e.logger.Error("Calendar read failed during booking",
			logging.Operation("book_appointment"),
			logging.Date(req.Date),
			logging.Slot(req.Slot),
			logging.Err(err))
		return Result{
			Outcome: OutcomeFailed,
			Message: "Sorry, I couldn't reach the calendar to confirm that time. Please try again in a moment.",
		}
	}

	for _, event := range events {
		if event.AllDay || event.Start.IsZero() {
			continue
		}
		if event.Start.Format(catalog.SlotLayout) == req.Slot {
			return Result{
				Outcome: OutcomeSlotTaken,
				Message: "That time was just taken. Would you like to pick another slot?",
			}
		}
	}

	created, err := e.gateway.InsertAppointment(ctx, calendar.Appointment{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Service:      req.Service,
		Start:        start,
		Duration:     e.catalog.Duration(),
	})
	if err != nil {
		e.logger.Error("Calendar write failed during booking",
			logging.Operation("book_appointment"),
			logging.Date(req.Date),
			logging.Slot(req.Slot),
			logging.Err(err))
		return Result{
			Outcome: OutcomeFailed,
			Message: "Sorry, I couldn't complete the booking right now. Please try again in a moment.",
		}
	}

	return Result{
		Outcome: OutcomeConfirmed,
		Message: "Your appointment is confirmed!",
		EventID: created.ID,
	}
}

// validate checks the request for missing or malformed fields and returns
// a caller-facing message when it is unusable.
func (e *Engine) validate(req Request) (string, bool) {
	var missing []string
	if strings.TrimSpace(req.CustomerName) == "" {
		missing = append(missing, "your name")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "a phone number")
	}
	if strings.TrimSpace(req.Service) == "" {
		missing = append(missing, "the service you need")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "a date")
	}
	if strings.TrimSpace(req.Slot) == "" {
		missing = append(missing, "a time")
	}
	if len(missing) > 0 {
		return "I still need " + strings.Join(missing, ", ") + " to book the appointment.", false
	}

	if _, err := catalog.ParseSlot(req.Slot); err != nil {
		return "I couldn't understand that time. Please give it as hours and minutes, like 10:00.", false
	}
	if !e.catalog.Contains(catalog.Slot(req.Slot)) {
		return "We don't book appointments at that time. Would you like to hear the available slots?", false
	}

	return "", true
}
