// Package availability computes the bookable slots for a given day by
// subtracting occupied calendar start times from the configured slot grid.
// It never surfaces calendar failures to the caller: when the upstream is
// unreachable it degrades to a configured fallback pair of slots.
package availability
