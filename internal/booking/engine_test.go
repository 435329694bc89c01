package booking

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
)

// fakeGateway acts like a tiny calendar: inserts become visible to
// subsequent list calls.
type fakeGateway struct {
	mu        sync.Mutex
	events    []calendar.Event
	listErr   error
	insertErr error
	inserted  []calendar.Appointment
	nextID    int
}

func (f *fakeGateway) ListDayEvents(_ context.Context, _ string) ([]calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]calendar.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeGateway) InsertAppointment(_ context.Context, appt calendar.Appointment) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return calendar.Event{}, f.insertErr
	}
	f.nextID++
	event := calendar.Event{
		ID:      "ev" + string(rune('0'+f.nextID)),
		Summary: appt.EventSummary(),
		Start:   appt.Start,
		End:     appt.Start.Add(appt.Duration),
	}
	f.events = append(f.events, event)
	f.inserted = append(f.inserted, appt)
	return event, nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(config.Config{
		TimeZone:        "America/New_York",
		Slots:           []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		FallbackSlots:   []string{"10:00", "14:00"},
		DurationMinutes: 45,
		MaxResults:      3,
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}
	return c
}

func testEngine(t *testing.T, gw Gateway) *Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEngine(gw, testCatalog(t), logger, nil)
}

func validRequest() Request {
	return Request{
		CustomerName: "Jane Doe",
		Phone:        "+15551234567",
		Service:      "Cleaning",
		Date:         "2025-11-05",
		Slot:         "10:00",
	}
}

func TestBook_Confirmed(t *testing.T) {
	gw := &fakeGateway{}
	e := testEngine(t, gw)

	result := e.Book(context.Background(), validRequest())

	if result.Outcome != OutcomeConfirmed {
		t.Fatalf("Expected confirmed, got %s (%s)", result.Outcome, result.Message)
	}
	if result.Message != "Your appointment is confirmed!" {
		t.Errorf("Unexpected message: %q", result.Message)
	}
	if result.EventID == "" {
		t.Error("Expected event ID on confirmation")
	}

	if len(gw.inserted) != 1 {
		t.Fatalf("Expected 1 inserted appointment, got %d", len(gw.inserted))
	}
	appt := gw.inserted[0]
	if appt.Duration != 45*time.Minute {
		t.Errorf("Expected 45m appointment, got %v", appt.Duration)
	}
	if got := appt.Start.Format("2006-01-02 15:04"); got != "2025-11-05 10:00" {
		t.Errorf("Unexpected appointment start: %s", got)
	}
	if appt.EventSummary() != "Cleaning - Jane Doe" {
		t.Errorf("Unexpected summary: %q", appt.EventSummary())
	}
}

func TestBook_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantMsg string
	}{
		{
			name:    "missing name",
			mutate:  func(r *Request) { r.CustomerName = " " },
			wantMsg: "your name",
		},
		{
			name:    "missing phone",
			mutate:  func(r *Request) { r.Phone = "" },
			wantMsg: "a phone number",
		},
		{
			name:    "missing everything",
			mutate:  func(r *Request) { *r = Request{} },
			wantMsg: "your name, a phone number, the service you need, a date, a time",
		},
		{
			name:    "malformed slot",
			mutate:  func(r *Request) { r.Slot = "10am" },
			wantMsg: "hours and minutes",
		},
		{
			name:    "off-grid slot",
			mutate:  func(r *Request) { r.Slot = "12:00" },
			wantMsg: "don't book appointments at that time",
		},
		{
			name:    "malformed date",
			mutate:  func(r *Request) { r.Date = "next tuesday" },
			wantMsg: "year-month-day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			e := testEngine(t, gw)

			req := validRequest()
			tt.mutate(&req)

			result := e.Book(context.Background(), req)
			if result.Outcome != OutcomeRejected {
				t.Fatalf("Expected rejected, got %s", result.Outcome)
			}
			if !strings.Contains(result.Message, tt.wantMsg) {
				t.Errorf("Expected message containing %q, got %q", tt.wantMsg, result.Message)
			}
			if len(gw.inserted) != 0 {
				t.Error("Rejected request must not reach the calendar")
			}
		})
	}
}

func TestBook_SlotTaken(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	occupied, _ := time.ParseInLocation("2006-01-02 15:04", "2025-11-05 10:00", loc)

	gw := &fakeGateway{events: []calendar.Event{
		{ID: "existing", Start: occupied, End: occupied.Add(45 * time.Minute)},
	}}
	e := testEngine(t, gw)

	result := e.Book(context.Background(), validRequest())

	if result.Outcome != OutcomeSlotTaken {
		t.Fatalf("Expected slot_taken, got %s", result.Outcome)
	}
	if len(gw.inserted) != 0 {
		t.Error("Taken slot must not be double-booked")
	}
}

func TestBook_ReadFailureFailsBooking(t *testing.T) {
	gw := &fakeGateway{listErr: calendar.ErrUpstreamUnavailable}
	e := testEngine(t, gw)

	result := e.Book(context.Background(), validRequest())

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Expected failed, got %s", result.Outcome)
	}
	if len(gw.inserted) != 0 {
		t.Error("Booking must not be written without a confirmed recheck")
	}
}

func TestBook_WriteFailure(t *testing.T) {
	gw := &fakeGateway{insertErr: calendar.ErrUpstreamUnavailable}
	e := testEngine(t, gw)

	result := e.Book(context.Background(), validRequest())

	if result.Outcome != OutcomeFailed {
		t.Fatalf("Expected failed, got %s", result.Outcome)
	}
	if result.Message == "" || strings.Contains(result.Message, "unavailable") {
		t.Errorf("Message must be caller-safe, got %q", result.Message)
	}
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	gw := &fakeGateway{}
	e := testEngine(t, gw)

	const attempts = 8
	results := make([]Result, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := validRequest()
			req.CustomerName = "Caller " + string(rune('A'+i))
			results[i] = e.Book(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var confirmed, taken int
	for _, r := range results {
		switch r.Outcome {
		case OutcomeConfirmed:
			confirmed++
		case OutcomeSlotTaken:
			taken++
		default:
			t.Errorf("Unexpected outcome %s: %s", r.Outcome, r.Message)
		}
	}

	if confirmed != 1 {
		t.Errorf("Expected exactly 1 confirmed booking, got %d", confirmed)
	}
	if taken != attempts-1 {
		t.Errorf("Expected %d slot_taken results, got %d", attempts-1, taken)
	}
	if len(gw.inserted) != 1 {
		t.Errorf("Expected exactly 1 calendar insert, got %d", len(gw.inserted))
	}
}

func TestBook_ConcurrentDistinctSlots(t *testing.T) {
	gw := &fakeGateway{}
	e := testEngine(t, gw)

	slots := []string{"09:00", "10:00", "11:00", "14:00"}
	results := make([]Result, len(slots))

	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot string) {
			defer wg.Done()
			req := validRequest()
			req.Slot = slot
			results[i] = e.Book(context.Background(), req)
		}(i, slot)
	}
	wg.Wait()

	for i, r := range results {
		if r.Outcome != OutcomeConfirmed {
			t.Errorf("Slot %s: expected confirmed, got %s (%s)", slots[i], r.Outcome, r.Message)
		}
	}
	if len(gw.inserted) != len(slots) {
		t.Errorf("Expected %d inserts, got %d", len(slots), len(gw.inserted))
	}
}
