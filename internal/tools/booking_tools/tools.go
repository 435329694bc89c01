package booking_tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/booking"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/server"
	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/tools/common"
)

// RegisterBookingTools registers the scheduling tools with the MCP server.
func RegisterBookingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	checkSlotsTool := mcp.NewTool("check_slots",
		mcp.WithDescription("Check available appointment times at the clinic for a date"),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Date to check, formatted YYYY-MM-DD"),
		),
	)

	s.AddTool(checkSlotsTool, common.InstrumentedToolHandler("check_slots", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckSlots(ctx, request, sc)
		}))

	bookAppointmentTool := mcp.NewTool("book_appointment",
		mcp.WithDescription("Book a dental appointment for a caller"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Caller's full name"),
		),
		mcp.WithString("phone",
			mcp.Required(),
			mcp.Description("Caller's phone number"),
		),
		mcp.WithString("service",
			mcp.Required(),
			mcp.Description("Requested service, e.g. 'Cleaning'"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Appointment date, formatted YYYY-MM-DD"),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Appointment start time, formatted HH:MM"),
		),
	)

	s.AddTool(bookAppointmentTool, common.InstrumentedToolHandler("book_appointment", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBookAppointment(ctx, request, sc)
		}))

	return nil
}

func handleCheckSlots(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	date := common.StringArg(args, "date")
	if date == "" {
		return mcp.NewToolResultError("date is required"), nil
	}

	result := sc.Availability().Compute(ctx, date)

	slots := make([]string, len(result.Slots))
	for i, slot := range result.Slots {
		slots[i] = slot.String()
	}

	return mcp.NewToolResultText("Available times: " + strings.Join(slots, ", ") + ". Which one works for you?"), nil
}

func handleBookAppointment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	outcome := sc.Booking().Book(ctx, booking.Request{
		CustomerName: common.StringArg(args, "name"),
		Phone:        common.StringArg(args, "phone"),
		Service:      common.StringArg(args, "service"),
		Date:         common.StringArg(args, "date"),
		Slot:         common.StringArg(args, "time"),
	})

	// Upstream failure is the only outcome the assistant should treat as a
	// tool error; rejections and taken slots are conversational results.
	if outcome.Outcome == booking.OutcomeFailed {
		return mcp.NewToolResultError(outcome.Message), nil
	}

	return mcp.NewToolResultText(outcome.Message), nil
}
