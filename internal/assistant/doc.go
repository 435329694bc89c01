// Package assistant generates free-form receptionist replies with Gemini.
// It handles the conversational turns that are not tool calls: greetings,
// questions about the clinic, anything the knowledge base can answer. The
// scheduling engines never depend on it.
package assistant
