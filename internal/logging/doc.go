// Package logging provides structured logging utilities for the receptionist
// backend.
//
// It centralizes attribute naming for slog so that availability queries,
// booking attempts and calendar operations log the same keys everywhere, and
// it keeps caller PII (names, phone numbers) out of log output: phone numbers
// are hashed so bookings can be correlated without exposing the number.
package logging
