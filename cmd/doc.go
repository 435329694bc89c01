// Package cmd implements the command-line interface for the receptionist
// service.
//
// This package provides the following commands:
//   - serve: Start the webhook server (or MCP stdio server) that backs the
//     conversational receptionist
//   - slots: Print the open appointment slots for a date
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
