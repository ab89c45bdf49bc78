package occupancy

import (
	"time"

	"github.com/gedemagt/booking/internal/timeslot"
)

// Iterator lazily yields the concrete (start, end) occurrences of a weekly
// template within a query window. It is restartable: a fresh iterator from
// Occurrences always replays the same sequence.
type Iterator struct {
	duration time.Duration
	number   int

	next  time.Time
	until time.Time
}

// Occurrences returns an iterator over the occurrences of tpl whose interval
// may intersect [from, to). The first occurrence is the template's own start;
// later ones follow weekly. A repeat-end bounds the sequence inclusively by
// occurrence start date.
func Occurrences(tpl Template, from, to time.Time) *Iterator {
	it := &Iterator{
		duration: tpl.End.Sub(tpl.Start),
		number:   tpl.Number,
		next:     tpl.Start,
		until:    to,
	}

	if tpl.RepeatEnd != nil {
		// Occurrences starting after the repeat-end date are not generated.
		cutoff := timeslot.StartOfDay(*tpl.RepeatEnd).AddDate(0, 0, 1)
		if cutoff.Before(it.until) {
			it.until = cutoff
		}
	}

	// Fast-forward whole weeks so enumeration starts near the window
	// instead of at the template origin.
	if tpl.Start.Before(from) {
		weeks := int(from.Sub(tpl.Start) / (7 * 24 * time.Hour))
		it.next = tpl.Start.AddDate(0, 0, 7*weeks)
	}

	// Skip occurrences ending at or before the window start.
	for !it.next.Add(it.duration).After(from) {
		it.next = it.next.AddDate(0, 0, 7)
	}

	return it
}

// Next returns the following occurrence, or ok=false when the sequence is
// exhausted for the window.
func (it *Iterator) Next() (start, end time.Time, ok bool) {
	if !it.next.Before(it.until) {
		return time.Time{}, time.Time{}, false
	}

	start = it.next
	end = start.Add(it.duration)
	it.next = it.next.AddDate(0, 0, 7)
	return start, end, true
}
