package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
)

// Event is a simplified view of a calendar event, carrying only what the
// scheduling engines need.
type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Status      string
}

// Appointment describes a booking to be written to the clinic calendar.
type Appointment struct {
	CustomerName string
	Phone        string
	Service      string
	Start        time.Time
	Duration     time.Duration
}

// EventSummary returns the calendar event title for the appointment,
// e.g. "Cleaning - Jane Doe".
func (a Appointment) EventSummary() string {
	return a.Service + " - " + a.CustomerName
}

// EventDescription returns the calendar event description for the
// appointment. The phone number lives here so staff can reach the caller.
func (a Appointment) EventDescription() string {
	return "Phone: " + a.Phone
}

// toEvent converts a Google Calendar event to the package view. Timed
// events are parsed in place (the RFC3339 payload carries its own offset);
// all-day events carry only a date and are resolved in the clinic zone.
func toEvent(event *calendar.Event, loc *time.Location) Event {
	e := Event{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Status:      event.Status,
	}

	if event.Start != nil {
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				e.Start = t.In(loc)
			}
		} else if event.Start.Date != "" {
			e.AllDay = true
			if t, err := time.ParseInLocation(catalog.DateLayout, event.Start.Date, loc); err == nil {
				e.Start = t
			}
		}
	}

	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				e.End = t.In(loc)
			}
		} else if event.End.Date != "" {
			if t, err := time.ParseInLocation(catalog.DateLayout, event.End.Date, loc); err == nil {
				e.End = t
			}
		}
	}

	return e
}
