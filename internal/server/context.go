package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/availability"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/booking"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/catalog"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/router"
)

// Responder generates free-form conversational replies. Satisfied by
// assistant.Assistant; nil when no Gemini key is configured.
type Responder interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Dependencies bundles everything a ServerContext needs. All fields except
// Assistant and Metrics are required.
type Dependencies struct {
	Catalog      *catalog.Catalog
	Availability *availability.Engine
	Booking      *booking.Engine
	Router       *router.Router
	Assistant    Responder
	Metrics      *instrumentation.Metrics
	Logger       *slog.Logger
}

// ServerContext holds the shared state of the running service.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	deps Dependencies

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a server context with its own cancelable
// lifetime derived from ctx.
func NewServerContext(ctx context.Context, deps Dependencies) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		deps:   deps,
	}
}

// Context returns the server lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Catalog returns the slot catalog.
func (sc *ServerContext) Catalog() *catalog.Catalog {
	return sc.deps.Catalog
}

// Availability returns the availability engine.
func (sc *ServerContext) Availability() *availability.Engine {
	return sc.deps.Availability
}

// Booking returns the booking engine.
func (sc *ServerContext) Booking() *booking.Engine {
	return sc.deps.Booking
}

// Router returns the tool router.
func (sc *ServerContext) Router() *router.Router {
	return sc.deps.Router
}

// Assistant returns the conversational responder, or nil when none is
// configured.
func (sc *ServerContext) Assistant() Responder {
	return sc.deps.Assistant
}

// Metrics returns the metrics recorder. May be nil; all Record methods
// tolerate that.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.deps.Metrics
}

// Logger returns the process logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.deps.Logger
}

// Shutdown marks the context as shutting down and cancels its lifetime.
func (sc *ServerContext) Shutdown() {
	sc.mu.Lock()
	sc.shutdown = true
	sc.mu.Unlock()
	sc.cancel()
}

// IsShutdown reports whether Shutdown has been called.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}
