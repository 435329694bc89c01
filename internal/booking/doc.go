// Package booking writes appointments to the clinic calendar. Each booking
// validates the request, serializes on a per-(date,slot) lock, rechecks the
// slot against a fresh calendar read, and only then inserts the event, so
// two concurrent requests for the same slot cannot both succeed within one
// process.
package booking
