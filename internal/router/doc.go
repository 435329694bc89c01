// Package router maps tool invocations from the agent platform onto the
// scheduling engines. It dispatches a canonical ToolCall form; the two
// wire shapes the platform sends (a tool-calls batch and a legacy flat
// request) are adapted to that form at the payload boundary.
package router
