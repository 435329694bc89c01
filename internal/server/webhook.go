package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/router"
)

const (
	// DefaultWebhookAddr is the default listen address for the webhook server.
	DefaultWebhookAddr = ":8080"

	// maxBodyBytes caps tool and conversation request bodies.
	maxBodyBytes = 1 << 20

	webhookReadTimeout  = 10 * time.Second
	webhookWriteTimeout = 30 * time.Second
	webhookIdleTimeout  = 60 * time.Second
)

// secretHeader carries the shared webhook secret when one is configured.
const secretHeader = "X-Webhook-Secret"

// fallbackReply is sent when no conversational model is available or the
// model call fails. Never expose the failure itself to the caller.
const fallbackReply = "I'm sorry, I didn't catch that. Could you say it again?"

// WebhookServer serves the agent platform's tool and conversation webhooks
// plus the health probes.
type WebhookServer struct {
	sc         *ServerContext
	health     *HealthChecker
	secret     string
	addr       string
	httpServer *http.Server
}

// NewWebhookServer creates a webhook server. An empty secret disables the
// shared-secret check.
func NewWebhookServer(sc *ServerContext, health *HealthChecker, addr, secret string) *WebhookServer {
	if addr == "" {
		addr = DefaultWebhookAddr
	}
	return &WebhookServer{
		sc:     sc,
		health: health,
		secret: secret,
		addr:   addr,
	}
}

// Handler builds the webhook routing table. Exposed for httptest.
func (s *WebhookServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /tools", s.instrument("/tools", s.handleTools))
	mux.Handle("POST /webhook", s.instrument("/webhook", s.handleConversation))
	s.health.RegisterHealthEndpoints(mux)
	return mux
}

// Start serves until the listener fails or Shutdown is called.
func (s *WebhookServer) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: webhookReadTimeout,
		WriteTimeout:      webhookWriteTimeout,
		IdleTimeout:       webhookIdleTimeout,
	}

	s.sc.Logger().Info("Starting webhook server", slog.String("addr", s.addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains the webhook server.
func (s *WebhookServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.sc.Logger().Info("Shutting down webhook server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *WebhookServer) Addr() string {
	return s.addr
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with the shared-secret check and HTTP metrics.
func (s *WebhookServer) instrument(path string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if s.secret != "" && r.Header.Get(secretHeader) != s.secret {
			s.sc.Logger().Warn("Webhook secret mismatch", slog.String("path", path))
			writeJSON(rec, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		} else {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			next(rec, r)
		}

		s.sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, path, rec.status, time.Since(start))
	})
}

// handleTools answers tool invocations in whichever wire shape they arrive.
func (s *WebhookServer) handleTools(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
		return
	}

	req, err := router.ParseToolRequest(body)
	if err != nil {
		if !errors.Is(err, router.ErrBadPayload) {
			s.sc.Logger().Error("Tool request parse failed", logging.Err(err))
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unrecognized tool request"})
		return
	}

	results := s.sc.Router().DispatchBatch(r.Context(), req.Calls)
	writeJSON(w, http.StatusOK, req.Reply(results))
}

// conversationRequest is one free-form turn from the agent platform.
type conversationRequest struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// handleConversation answers conversational turns: booking intent short-
// circuits to availability for today, everything else goes to the model.
func (s *WebhookServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	message := strings.ToLower(strings.TrimSpace(req.Message.Content))

	var reply string
	if strings.Contains(message, "book") || strings.Contains(message, "appointment") {
		today := time.Now().In(s.sc.Catalog().Location()).Format(catalog.DateLayout)
		avail := s.sc.Availability().Compute(r.Context(), today)

		slots := make([]string, len(avail.Slots))
		for i, slot := range avail.Slots {
			slots[i] = slot.String()
		}
		reply = "We have availability at: " + strings.Join(slots, ", ") + ". Which works for you?"
	} else {
		reply = s.assistantReply(r.Context(), req.Message.Content)
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *WebhookServer) assistantReply(ctx context.Context, message string) string {
	assistant := s.sc.Assistant()
	if assistant == nil {
		return fallbackReply
	}

	reply, err := assistant.Reply(ctx, message)
	if err != nil {
		s.sc.Logger().Error("Assistant reply failed", logging.Err(err))
		return fallbackReply
	}
	return reply
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
