package catalog

import (
	"fmt"
	"time"

	"github.com/cliphubagency-collab/dental-ai-receptionist1/internal/config"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// SlotLayout is the wire format for slot times.
const SlotLayout = "15:04"

// Slot is a time-of-day at which an appointment may start, in "HH:MM" form.
type Slot string

// ParseSlot validates a wire-format slot time.
func ParseSlot(s string) (Slot, error) {
	if _, err := time.Parse(SlotLayout, s); err != nil {
		return "", fmt.Errorf("invalid slot time %q: %w", s, err)
	}
	return Slot(s), nil
}

// String returns the wire form of the slot.
func (s Slot) String() string {
	return string(s)
}

// Catalog is the static definition of bookable times for one deployment.
type Catalog struct {
	slots      []Slot
	slotSet    map[Slot]struct{}
	duration   time.Duration
	fallback   []Slot
	maxResults int
	location   *time.Location
}

// New builds a Catalog from deployment configuration, validating every slot
// value up front so request paths never see a malformed grid.
func New(cfg config.Config) (*Catalog, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", cfg.TimeZone, err)
	}

	slots := make([]Slot, 0, len(cfg.Slots))
	slotSet := make(map[Slot]struct{}, len(cfg.Slots))
	for _, raw := range cfg.Slots {
		slot, err := ParseSlot(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := slotSet[slot]; dup {
			return nil, fmt.Errorf("duplicate slot %q in catalog", raw)
		}
		slots = append(slots, slot)
		slotSet[slot] = struct{}{}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("catalog must define at least one slot")
	}

	fallback := make([]Slot, 0, len(cfg.FallbackSlots))
	for _, raw := range cfg.FallbackSlots {
		slot, err := ParseSlot(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid fallback slot: %w", err)
		}
		fallback = append(fallback, slot)
	}
	if len(fallback) == 0 {
		return nil, fmt.Errorf("catalog must define at least one fallback slot")
	}

	if cfg.DurationMinutes <= 0 {
		return nil, fmt.Errorf("appointment duration must be positive, got %d minutes", cfg.DurationMinutes)
	}
	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", cfg.MaxResults)
	}

	return &Catalog{
		slots:      slots,
		slotSet:    slotSet,
		duration:   time.Duration(cfg.DurationMinutes) * time.Minute,
		fallback:   fallback,
		maxResults: cfg.MaxResults,
		location:   loc,
	}, nil
}

// Slots returns the ordered bookable times. The returned slice is shared;
// callers must not modify it.
func (c *Catalog) Slots() []Slot {
	return c.slots
}

// Contains reports whether the slot is part of the bookable grid.
func (c *Catalog) Contains(slot Slot) bool {
	_, ok := c.slotSet[slot]
	return ok
}

// Duration returns the appointment length.
func (c *Catalog) Duration() time.Duration {
	return c.duration
}

// Fallback returns the slots suggested when availability cannot be computed.
func (c *Catalog) Fallback() []Slot {
	return c.fallback
}

// MaxResults returns the cap on offered slots per availability query.
func (c *Catalog) MaxResults() int {
	return c.maxResults
}

// Location returns the clinic time zone.
func (c *Catalog) Location() *time.Location {
	return c.location
}

// At returns the wall-clock start of a slot on the given date in the clinic
// time zone.
func (c *Catalog) At(date string, slot Slot) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+SlotLayout, date+" "+slot.String(), c.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q for slot %s: %w", date, slot, err)
	}
	return t, nil
}
