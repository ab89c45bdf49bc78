package booking

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, zoneID, userID int, start, end time.Time, number int, note *string) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	Delete(ctx context.Context, id int) error
	UpdateNote(ctx context.Context, id int, note *string) error

	// ForZone returns one-off bookings for the zone overlapping [from, to).
	ForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Booking, error)
	// ForUser returns the user's bookings across the gym's zones.
	ForUser(ctx context.Context, gymID, userID int) ([]Booking, error)
	// UpcomingForUser returns the user's bookings ending after now, ordered
	// by start.
	UpcomingForUser(ctx context.Context, gymID, userID int, now time.Time) ([]Booking, error)

	CreateRecurring(ctx context.Context, zoneID int, start, end time.Time, number int, repeatEnd *time.Time, note *string) (*RecurringBooking, error)
	GetRecurringByID(ctx context.Context, id int) (*RecurringBooking, error)
	DeleteRecurring(ctx context.Context, id int) error
	// RecurringForZone returns templates that may generate occurrences
	// within [from, to).
	RecurringForZone(ctx context.Context, zoneID int, from, to time.Time) ([]RecurringBooking, error)
}
