// Package server is the HTTP boundary of the receptionist backend: the
// tool webhook the agent platform calls, the conversational webhook,
// health probes, and the dedicated metrics listener. ServerContext owns
// the engines and shared dependencies for the lifetime of the process.
package server
