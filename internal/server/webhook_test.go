package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/availability"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/booking"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/calendar"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/router"
)

type fakeGateway struct {
	events []calendar.Event
	err    error
}

func (f *fakeGateway) ListDayEvents(_ context.Context, _ string) ([]calendar.Event, error) {
	return f.events, f.err
}

func (f *fakeGateway) InsertAppointment(_ context.Context, appt calendar.Appointment) (calendar.Event, error) {
	return calendar.Event{ID: "ev1", Start: appt.Start, End: appt.Start.Add(appt.Duration)}, nil
}

type fakeResponder struct {
	reply string
	err   error
}

func (f *fakeResponder) Reply(_ context.Context, _ string) (string, error) {
	return f.reply, f.err
}

func testServer(t *testing.T, gw *fakeGateway, responder Responder, secret string) *WebhookServer {
	t.Helper()

	cat, err := catalog.New(config.Config{
		TimeZone:        "America/New_York",
		Slots:           []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"},
		FallbackSlots:   []string{"10:00", "14:00"},
		DurationMinutes: 45,
		MaxResults:      3,
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	avail := availability.NewEngine(gw, cat, logger, nil)
	book := booking.NewEngine(gw, cat, logger, nil)

	sc := NewServerContext(context.Background(), Dependencies{
		Catalog:      cat,
		Availability: avail,
		Booking:      book,
		Router:       router.New(avail, book, logger, nil),
		Assistant:    responder,
		Logger:       logger,
	})
	t.Cleanup(sc.Shutdown)

	return NewWebhookServer(sc, NewHealthChecker(sc), "", secret)
}

func postJSON(t *testing.T, handler http.Handler, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandleTools_Legacy(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "")

	w := postJSON(t, s.Handler(), "/tools",
		`{"toolName": "check_slots", "parameters": {"date": "2025-11-05"}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply struct {
		Success bool   `json:"success"`
		Result  string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	if !reply.Success {
		t.Error("Expected success")
	}
	want := "Available times: 09:00, 10:00, 11:00. Which one works for you?"
	if reply.Result != want {
		t.Errorf("Expected %q, got %q", want, reply.Result)
	}
}

func TestHandleTools_Batch(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "")

	body := `{
		"message": {"toolCalls": [
			{"id": "call-1", "function": {"name": "check_slots", "arguments": {"date": "2025-11-05"}}},
			{"id": "call-2", "function": {"name": "book_appointment", "arguments": {
				"name": "Jane Doe", "phone": "+15551234567", "service": "Cleaning",
				"date": "2025-11-05", "time": "10:00"
			}}}
		]}
	}`

	w := postJSON(t, s.Handler(), "/tools", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reply struct {
		Results []struct {
			ToolCallID string `json:"toolCallId"`
			Result     string `json:"result"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	if len(reply.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(reply.Results))
	}
	if reply.Results[0].ToolCallID != "call-1" || reply.Results[1].ToolCallID != "call-2" {
		t.Error("Expected correlation IDs preserved in order")
	}
	if reply.Results[1].Result != "Your appointment is confirmed!" {
		t.Errorf("Unexpected booking result: %q", reply.Results[1].Result)
	}
}

func TestHandleTools_BadPayload(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "")

	w := postJSON(t, s.Handler(), "/tools", `{"unrelated": true}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleTools_DegradedAvailabilityStays200(t *testing.T) {
	s := testServer(t, &fakeGateway{err: errors.New("calendar down")}, nil, "")

	w := postJSON(t, s.Handler(), "/tools",
		`{"toolName": "check_slots", "parameters": {"date": "2025-11-05"}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Availability must degrade, not fail: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "10:00, 14:00") {
		t.Errorf("Expected fallback slots in reply, got %s", w.Body.String())
	}
}

func TestWebhookSecret(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "s3cret")
	body := `{"toolName": "check_slots", "parameters": {"date": "2025-11-05"}}`

	w := postJSON(t, s.Handler(), "/tools", body, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without secret, got %d", w.Code)
	}

	w = postJSON(t, s.Handler(), "/tools", body, map[string]string{secretHeader: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with wrong secret, got %d", w.Code)
	}

	w = postJSON(t, s.Handler(), "/tools", body, map[string]string{secretHeader: "s3cret"})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with correct secret, got %d", w.Code)
	}
}

func TestHandleConversation_BookingIntent(t *testing.T) {
	s := testServer(t, &fakeGateway{}, &fakeResponder{reply: "model reply"}, "")

	w := postJSON(t, s.Handler(), "/webhook",
		`{"message": {"content": "I'd like to book a cleaning"}}`, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var reply struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	if !strings.HasPrefix(reply.Reply, "We have availability at: ") {
		t.Errorf("Expected availability reply, got %q", reply.Reply)
	}
	if !strings.HasSuffix(reply.Reply, ". Which works for you?") {
		t.Errorf("Unexpected reply shape: %q", reply.Reply)
	}
}

func TestHandleConversation_FreeForm(t *testing.T) {
	s := testServer(t, &fakeGateway{}, &fakeResponder{reply: "We're open 9 to 5."}, "")

	w := postJSON(t, s.Handler(), "/webhook",
		`{"message": {"content": "what are your hours?"}}`, nil)

	var reply struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("Failed to decode reply: %v", err)
	}
	if reply.Reply != "We're open 9 to 5." {
		t.Errorf("Expected model reply, got %q", reply.Reply)
	}
}

func TestHandleConversation_AssistantFailure(t *testing.T) {
	tests := []struct {
		name      string
		responder Responder
	}{
		{name: "no assistant configured", responder: nil},
		{name: "assistant error", responder: &fakeResponder{err: errors.New("quota")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(t, &fakeGateway{}, tt.responder, "")

			w := postJSON(t, s.Handler(), "/webhook",
				`{"message": {"content": "hello"}}`, nil)

			if w.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", w.Code)
			}
			if !strings.Contains(w.Body.String(), fallbackReply) {
				t.Errorf("Expected fallback reply, got %s", w.Body.String())
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "")
	handler := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected healthz 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected readyz 200, got %d", w.Code)
	}
}

func TestReadyzAfterShutdown(t *testing.T) {
	s := testServer(t, &fakeGateway{}, nil, "")
	handler := s.Handler()

	s.sc.Shutdown()

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected readyz 503 after shutdown, got %d", w.Code)
	}
}
