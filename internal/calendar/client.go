package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
)

// Retry defaults. A failed call is retried maxRetries times with
// exponential backoff starting at baseDelay, each attempt bounded by
// callTimeout.
const (
	defaultMaxRetries  = 2
	defaultBaseDelay   = 200 * time.Millisecond
	defaultCallTimeout = 10 * time.Second
)

// eventsAPI is the slice of the Calendar API the client depends on.
type eventsAPI interface {
	List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error)
	Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error)
}

// googleEventsAPI implements eventsAPI against the real Calendar service.
type googleEventsAPI struct {
	svc *calendar.Service
}

func (g *googleEventsAPI) List(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	events, err := g.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return events.Items, nil
}

func (g *googleEventsAPI) Insert(ctx context.Context, calendarID string, event *calendar.Event) (*calendar.Event, error) {
	return g.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

// Client talks to the clinic's Google Calendar. All operations classify
// failures into the package error taxonomy and retry transient ones.
type Client struct {
	api        eventsAPI
	calendarID string
	location   *time.Location
	logger     *slog.Logger
	metrics    *instrumentation.Metrics

	maxRetries  int
	baseDelay   time.Duration
	callTimeout time.Duration
}

// NewClient creates a Calendar client authenticated with the service
// account credentials named in the configuration.
func NewClient(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*Client, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", cfg.TimeZone, err)
	}

	svc, err := calendar.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		api:         &googleEventsAPI{svc: svc},
		calendarID:  cfg.CalendarID,
		location:    loc,
		logger:      logger,
		metrics:     metrics,
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
		callTimeout: defaultCallTimeout,
	}, nil
}

// Location returns the clinic time zone the client resolves events in.
func (c *Client) Location() *time.Location {
	return c.location
}

// ListDayEvents lists all events on the clinic calendar for the given
// date (YYYY-MM-DD), covering the full clinic-zone day.
func (c *Client) ListDayEvents(ctx context.Context, date string) ([]Event, error) {
	dayStart, err := time.ParseInLocation(catalog.DateLayout, date, c.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid date", ErrInvalidRange, date)
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	ctx, span := instrumentation.StartCalendarSpan(ctx, "list")
	defer span.End()

	start := time.Now()

	var items []*calendar.Event
	err = c.withRetry(ctx, "list", func(ctx context.Context) error {
		var listErr error
		items, listErr = c.api.List(ctx, c.calendarID, dayStart, dayEnd)
		return listErr
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordCalendarOperation(ctx, "list", logging.StatusError, time.Since(start))
		return nil, err
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordCalendarOperation(ctx, "list", logging.StatusSuccess, time.Since(start))

	events := make([]Event, 0, len(items))
	for _, item := range items {
		events = append(events, toEvent(item, c.location))
	}
	return events, nil
}

// InsertAppointment writes a booking to the clinic calendar and returns
// the created event.
func (c *Client) InsertAppointment(ctx context.Context, appt Appointment) (Event, error) {
	if appt.Start.IsZero() {
		return Event{}, fmt.Errorf("%w: appointment has no start time", ErrInvalidRange)
	}

	event := &calendar.Event{
		Summary:     appt.EventSummary(),
		Description: appt.EventDescription(),
		Start: &calendar.EventDateTime{
			DateTime: appt.Start.Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: appt.Start.Add(appt.Duration).Format(time.RFC3339),
			TimeZone: c.location.String(),
		},
	}

	ctx, span := instrumentation.StartCalendarSpan(ctx, "insert")
	defer span.End()

	start := time.Now()

	var created *calendar.Event
	err := c.withRetry(ctx, "insert", func(ctx context.Context) error {
		var insertErr error
		created, insertErr = c.api.Insert(ctx, c.calendarID, event)
		return insertErr
	})
	if err != nil {
		instrumentation.SetSpanError(span, err)
		c.metrics.RecordCalendarOperation(ctx, "insert", logging.StatusError, time.Since(start))
		return Event{}, err
	}

	instrumentation.SetSpanSuccess(span)
	c.metrics.RecordCalendarOperation(ctx, "insert", logging.StatusSuccess, time.Since(start))

	return toEvent(created, c.location), nil
}

// withRetry runs fn with a per-attempt timeout, retrying transient
// failures with exponential backoff. The returned error is always
// classified.
func (c *Client) withRetry(ctx context.Context, operation string, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			c.logger.Warn("Retrying calendar operation",
				logging.Operation(operation),
				slog.Int(logging.KeyAttempt, attempt),
				slog.Duration("delay", delay),
				logging.Err(lastErr))
			c.metrics.RecordCalendarRetry(ctx, operation)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		err := fn(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}

		switch {
		case ctx.Err() != nil:
			// The caller gave up; don't reclassify or retry.
			return ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			// Only the attempt timed out: a stalled upstream, retryable
			// like any other transport failure.
			lastErr = fmt.Errorf("%w: %s timed out after %v", ErrUpstreamUnavailable, operation, c.callTimeout)
		default:
			lastErr = classify(err)
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
