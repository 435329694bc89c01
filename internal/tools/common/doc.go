// Package common provides shared helpers for the MCP tool handlers.
package common
