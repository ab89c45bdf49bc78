// Package timeslot converts wall-clock timestamps into discrete
// quarter-hour slot indices. All arithmetic is timezone-naive: timestamps
// are treated as local wall-clock values and never converted.
package timeslot

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Length is the atomic booking granularity.
	Length = 15 * time.Minute

	SlotsPerHour = 4
	SlotsPerDay  = 24 * SlotsPerHour
	SlotsPerWeek = 7 * SlotsPerDay
)

// Index returns the number of complete slots between origin and t,
// truncated toward zero. Negative when t is before origin.
func Index(t, origin time.Time) int {
	return int(t.Sub(origin) / Length)
}

// InSlots expresses a duration in whole slots, truncated toward zero.
func InSlots(d time.Duration) int {
	return int(d / Length)
}

// StartOfDay zeroes the time-of-day component.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the start of the most recent Monday.
func StartOfWeek(t time.Time) time.Time {
	back := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t.AddDate(0, 0, -back))
}

// SameDay reports whether both timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatSlots renders a slot count as a human-readable duration,
// e.g. 8 -> "2 hours", 5 -> "1 hour 15 minutes", 2 -> "30 minutes".
func FormatSlots(n int) string {
	hours := n / SlotsPerHour
	minutes := (n % SlotsPerHour) * 15

	var parts []string
	if hours == 1 {
		parts = append(parts, "1 hour")
	} else if hours > 1 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 || hours == 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	return strings.Join(parts, " ")
}
