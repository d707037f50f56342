// Package calendar holds the fixed daily slot template providers are booked on.
package calendar

import (
	"fmt"
	"time"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/clock"
)

// DefaultSlots are the twelve business hours from 08:00 to 19:00.
var DefaultSlots = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00", "19:00",
}

type entry struct {
	label  string
	hour   int
	minute int
}

// Calendar is immutable once built and safe for concurrent use.
type Calendar struct {
	entries []entry
	loc     *time.Location
}

// New parses "15:04" labels. Order is kept as given.
func New(labels []string, loc *time.Location) (*Calendar, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("calendar needs at least one slot")
	}
	if loc == nil {
		loc = time.Local
	}

	entries := make([]entry, 0, len(labels))
	for _, label := range labels {
		t, err := time.Parse("15:04", label)
		if err != nil {
			return nil, fmt.Errorf("invalid slot label %q: %w", label, err)
		}
		entries = append(entries, entry{label: label, hour: t.Hour(), minute: t.Minute()})
	}

	return &Calendar{entries: entries, loc: loc}, nil
}

// MustNew is New for static templates.
func MustNew(labels []string, loc *time.Location) *Calendar {
	c, err := New(labels, loc)
	if err != nil {
		panic(err)
	}
	return c
}

// Location is the business time zone slots are computed in.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Len is the number of slots per day.
func (c *Calendar) Len() int {
	return len(c.entries)
}

// Labels returns a copy of the template.
func (c *Calendar) Labels() []string {
	labels := make([]string, len(c.entries))
	for i, e := range c.entries {
		labels[i] = e.label
	}
	return labels
}

// SlotsFor returns the template for the calendar day that contains day, in
// template order. Every slot starts unavailable.
func (c *Calendar) SlotsFor(day time.Time) []model.Slot {
	day = day.In(c.loc)
	slots := make([]model.Slot, len(c.entries))
	for i, e := range c.entries {
		slots[i] = model.Slot{
			Time:  e.label,
			Value: clock.SetHour(day, e.hour, e.minute),
		}
	}
	return slots
}
