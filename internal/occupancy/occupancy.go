// Package occupancy materializes per-slot headcount timelines for a zone
// by combining one-off bookings with expanded recurring templates.
package occupancy

import (
	"context"
	"time"

	"github.com/gedemagt/booking/internal/timeslot"
)

// Entry is a one-off booking's contribution to a zone's occupancy.
type Entry struct {
	Start  time.Time
	End    time.Time
	Number int
	UserID int
}

// Template is a recurring booking template. Start defines both the first
// occurrence and the weekday/time-of-day of every later occurrence; the
// occurrence duration is End-Start. RepeatEnd, when set, is the last date
// (inclusive) on which an occurrence may start.
type Template struct {
	Start     time.Time
	End       time.Time
	Number    int
	RepeatEnd *time.Time
}

// Source is the booking store as seen by the builder.
type Source interface {
	// EntriesForZone returns one-off bookings for the zone overlapping [from, to).
	EntriesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Entry, error)
	// TemplatesForZone returns recurring templates for the zone that may
	// produce occurrences within [from, to).
	TemplatesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Template, error)
}

// Map is a dense occupancy timeline for [Start, Start + Slots*15m).
type Map struct {
	Start time.Time `json:"start"`
	Slots int       `json:"slots"`

	// Total holds the summed headcount per slot across all users and
	// recurring occurrences. Mine holds only the actor's own bookings and
	// is accumulated in the same pass.
	Total []int `json:"total"`
	Mine  []int `json:"mine"`

	// MyBookings counts the actor's bookings intersecting the window.
	MyBookings int `json:"my_bookings"`
}

type Builder struct {
	src Source
}

func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// Build produces the occupancy map for zoneID over [from, to). Bookings and
// occurrences partially overlapping the window have only their overlapping
// slots counted. actorID selects which entries accumulate into Mine; pass a
// non-matching id (e.g. 0) when no actor subtotal is wanted.
func (b *Builder) Build(ctx context.Context, zoneID int, from, to time.Time, actorID int) (*Map, error) {
	slots := timeslot.Index(to, from)
	if slots < 0 {
		slots = 0
	}

	m := &Map{
		Start: from,
		Slots: slots,
		Total: make([]int, slots),
		Mine:  make([]int, slots),
	}

	entries, err := b.src.EntriesForZone(ctx, zoneID, from, to)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		mine := e.UserID == actorID
		if m.add(e.Start, e.End, e.Number, mine) && mine {
			m.MyBookings++
		}
	}

	templates, err := b.src.TemplatesForZone(ctx, zoneID, from, to)
	if err != nil {
		return nil, err
	}

	for _, tpl := range templates {
		it := Occurrences(tpl, from, to)
		for {
			start, end, ok := it.Next()
			if !ok {
				break
			}
			// Recurring occurrences belong to no user; never counted as mine.
			m.add(start, end, tpl.Number, false)
		}
	}

	return m, nil
}

// BuildDay builds the map for the calendar day containing t.
func (b *Builder) BuildDay(ctx context.Context, zoneID int, t time.Time, actorID int) (*Map, error) {
	day := timeslot.StartOfDay(t)
	return b.Build(ctx, zoneID, day, day.AddDate(0, 0, 1), actorID)
}

// BuildWeek builds the map for the Monday-aligned week containing t.
func (b *Builder) BuildWeek(ctx context.Context, zoneID int, t time.Time, actorID int) (*Map, error) {
	week := timeslot.StartOfWeek(t)
	return b.Build(ctx, zoneID, week, week.AddDate(0, 0, 7), actorID)
}

// add accumulates number into every slot of [start, end) clipped to the
// window. Reports whether any slot was written.
func (m *Map) add(start, end time.Time, number int, mine bool) bool {
	s := timeslot.Index(start, m.Start)
	e := timeslot.Index(end, m.Start)

	if s < 0 {
		s = 0
	}
	if e > m.Slots {
		e = m.Slots
	}
	if s >= e {
		return false
	}

	for i := s; i < e; i++ {
		m.Total[i] += number
		if mine {
			m.Mine[i] += number
		}
	}
	return true
}

// Peak returns the highest total headcount in slot range [from, to),
// indices clipped to the map bounds.
func (m *Map) Peak(from, to int) int {
	if from < 0 {
		from = 0
	}
	if to > m.Slots {
		to = m.Slots
	}
	max := 0
	for i := from; i < to; i++ {
		if m.Total[i] > max {
			max = m.Total[i]
		}
	}
	return max
}
