// Package catalog defines the clinic's bookable slot grid.
//
// A Catalog is pure data: the ordered set of times an appointment may start,
// the appointment duration, the fallback pair suggested when availability
// cannot be computed, the cap on offered slots and the clinic time zone. It
// performs no I/O; deployments override it through package config.
package catalog
