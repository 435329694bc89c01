package availability

import (
	"context"
	"log/slog"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
)

// Gateway is the slice of the calendar client the engine depends on.
type Gateway interface {
	ListDayEvents(ctx context.Context, date string) ([]calendar.Event, error)
}

// Result is the outcome of an availability query.
type Result struct {
	// Date is the queried date (YYYY-MM-DD).
	Date string

	// Slots holds the offered slots in grid order, capped at the
	// configured maximum. Never empty: a fully booked day falls back to
	// the configured pair so the conversation always has times to offer.
	Slots []catalog.Slot

	// Degraded is true when the calendar could not be read and Slots
	// holds the configured fallback pair instead of live availability.
	Degraded bool
}

// Engine answers availability queries against the clinic calendar.
type Engine struct {
	gateway Gateway
	catalog *catalog.Catalog
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewEngine creates an availability engine.
func NewEngine(gateway Gateway, cat *catalog.Catalog, logger *slog.Logger, metrics *instrumentation.Metrics) *Engine {
	return &Engine{
		gateway: gateway,
		catalog: cat,
		logger:  logger,
		metrics: metrics,
	}
}

// Compute returns the bookable slots for the given date. It never returns
// an error and never returns an empty slot list: if the calendar cannot be
// read, the result carries the configured fallback slots and is marked
// degraded; a successfully read but fully booked day also offers the
// fallback pair, without the degraded flag.
func (e *Engine) Compute(ctx context.Context, date string) Result {
	events, err := e.gateway.ListDayEvents(ctx, date)
	if err != nil {
		e.logger.Warn("Serving fallback slots, calendar read failed",
			logging.Operation("check_slots"),
			logging.Date(date),
			logging.Status(logging.StatusDegraded),
			logging.Err(err))
		e.metrics.RecordAvailabilityQuery(ctx, true)

		return Result{
			Date:     date,
			Slots:    e.catalog.Fallback(),
			Degraded: true,
		}
	}

	occupied := occupiedStarts(events)

	var slots []catalog.Slot
	for _, slot := range e.catalog.Slots() {
		if occupied[slot] {
			continue
		}
		slots = append(slots, slot)
		if len(slots) == e.catalog.MaxResults() {
			break
		}
	}

	// A fully booked day still offers the fallback pair. The conversation
	// must always have times to suggest; the booking recheck is what
	// actually protects an occupied slot.
	if len(slots) == 0 {
		e.logger.Info("Day fully booked, offering fallback slots",
			logging.Operation("check_slots"),
			logging.Date(date))
		slots = e.catalog.Fallback()
	}

	e.logger.Info("Computed availability",
		logging.Operation("check_slots"),
		logging.Date(date),
		slog.Int("offered", len(slots)),
		slog.Int("events", len(events)))
	e.metrics.RecordAvailabilityQuery(ctx, false)

	return Result{Date: date, Slots: slots}
}

// occupiedStarts maps an event list onto the set of occupied start times
// of day. An event blocks the slot its start falls on; all-day events and
// events without a resolvable start block nothing.
func occupiedStarts(events []calendar.Event) map[catalog.Slot]bool {
	occupied := make(map[catalog.Slot]bool, len(events))
	for _, event := range events {
		if event.AllDay || event.Start.IsZero() {
			continue
		}
		occupied[catalog.Slot(event.Start.Format(catalog.SlotLayout))] = true
	}
	return occupied
}
