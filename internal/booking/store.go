package booking

import (
	"context"
	"time"

	"github.com/gedemagt/booking/internal/occupancy"
)

// store adapts a Repository to the read interfaces the occupancy builder
// and the policy evaluator consume, so the engine stays decoupled from
// persistence rows.
type store struct {
	repo Repository
}

func (s store) EntriesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]occupancy.Entry, error) {
	bookings, err := s.repo.ForZone(ctx, zoneID, from, to)
	if err != nil {
		return nil, err
	}
	return toEntries(bookings), nil
}

func (s store) TemplatesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]occupancy.Template, error) {
	templates, err := s.repo.RecurringForZone(ctx, zoneID, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]occupancy.Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, occupancy.Template{
			Start:     t.Start,
			End:       t.End,
			Number:    t.Number,
			RepeatEnd: t.RepeatEnd,
		})
	}
	return out, nil
}

func (s store) EntriesForUser(ctx context.Context, gymID, userID int) ([]occupancy.Entry, error) {
	bookings, err := s.repo.ForUser(ctx, gymID, userID)
	if err != nil {
		return nil, err
	}
	return toEntries(bookings), nil
}

func toEntries(bookings []Booking) []occupancy.Entry {
	out := make([]occupancy.Entry, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, occupancy.Entry{
			Start:  b.Start,
			End:    b.End,
			Number: b.Number,
			UserID: b.UserID,
		})
	}
	return out
}
