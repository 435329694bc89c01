// Package calendar wraps the Google Calendar API for the receptionist
// backend. It exposes day-window event listing and appointment insertion
// with bounded retries, and classifies upstream failures into a small
// error taxonomy the scheduling engines act on.
package calendar
