package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/availability"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/booking"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/instrumentation"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/logging"
)

// Tool names the router dispatches.
const (
	ToolCheckSlots      = "check_slots"
	ToolBookAppointment = "book_appointment"
)

// ToolCall is the canonical form of a single tool invocation, independent
// of the wire shape it arrived in.
type ToolCall struct {
	// ID is the platform's correlation ID for this call. May be empty on
	// the legacy wire shape.
	ID string

	// Name is the tool name, e.g. "check_slots".
	Name string

	// Arguments holds the tool arguments as strings.
	Arguments map[string]string
}

// ToolResult is the outcome of one dispatched call. Result is a human
// sentence the agent relays to the caller verbatim.
type ToolResult struct {
	ID      string
	Result  string
	Unknown bool
}

// Router dispatches tool calls to the scheduling engines.
type Router struct {
	availability *availability.Engine
	booking      *booking.Engine
	logger       *slog.Logger
	metrics      *instrumentation.Metrics
}

// New creates a router over the given engines.
func New(avail *availability.Engine, book *booking.Engine, logger *slog.Logger, metrics *instrumentation.Metrics) *Router {
	return &Router{
		availability: avail,
		booking:      book,
		logger:       logger,
		metrics:      metrics,
	}
}

// Dispatch routes a single tool call. Unknown tool names yield a polite
// refusal, never a default action.
func (r *Router) Dispatch(ctx context.Context, call ToolCall) ToolResult {
	ctx, span := instrumentation.StartToolSpan(ctx, call.Name)
	defer span.End()

	start := time.Now()

	var result ToolResult
	switch call.Name {
	case ToolCheckSlots:
		result = r.checkSlots(ctx, call)
	case ToolBookAppointment:
		result = r.bookAppointment(ctx, call)
	default:
		r.logger.Warn("Unknown tool requested",
			logging.Tool(call.Name))
		result = ToolResult{
			ID:      call.ID,
			Result:  "I can only check available times and book appointments.",
			Unknown: true,
		}
	}

	status := logging.StatusSuccess
	if result.Unknown {
		status = "unknown_tool"
		instrumentation.SetSpanError(span, fmt.Errorf("unknown tool %q", call.Name))
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	r.metrics.RecordToolInvocation(ctx, call.Name, status, time.Since(start))

	return result
}

// DispatchBatch routes every call in order. The returned slice matches the
// input in length and position, each result carrying its call's ID.
func (r *Router) DispatchBatch(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	for i, call := range calls {
		results[i] = r.Dispatch(ctx, call)
	}
	return results
}

func (r *Router) checkSlots(ctx context.Context, call ToolCall) ToolResult {
	date := call.Arguments["date"]

	avail := r.availability.Compute(ctx, date)

	slots := make([]string, len(avail.Slots))
	for i, s := range avail.Slots {
		slots[i] = s.String()
	}

	return ToolResult{
		ID:     call.ID,
		Result: "Available times: " + strings.Join(slots, ", ") + ". Which one works for you?",
	}
}

func (r *Router) bookAppointment(ctx context.Context, call ToolCall) ToolResult {
	slot := call.Arguments["time"]
	if slot == "" {
		slot = call.Arguments["slot"]
	}

	outcome := r.booking.Book(ctx, booking.Request{
		CustomerName: call.Arguments["name"],
		Phone:        call.Arguments["phone"],
		Service:      call.Arguments["service"],
		Date:         call.Arguments["date"],
		Slot:         slot,
	})

	return ToolResult{ID: call.ID, Result: outcome.Message}
}
