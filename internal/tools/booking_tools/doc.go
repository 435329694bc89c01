// Package booking_tools exposes the scheduling engines over MCP (Model
// Context Protocol), so desktop AI assistants can check availability and
// book appointments through the same engines the webhook uses.
package booking_tools
