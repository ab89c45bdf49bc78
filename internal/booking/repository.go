package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrBookingNotFound = errors.New("booking not found")

const bookingColumns = `id, zone_id, user_id, start, "end", number, note, created_at`
const recurringColumns = `id, zone_id, start, "end", number, repeat, repeat_end, note, created_at`

type repository struct {
	db sqlx.ExtContext
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func WithTx(tx *sqlx.Tx) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, zoneID, userID int, start, end time.Time, number int, note *string) (*Booking, error) {
	query := `
		INSERT INTO bookings (zone_id, user_id, start, "end", number, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + bookingColumns

	var b Booking
	if err := sqlx.GetContext(ctx, r.db, &b, query, zoneID, userID, start, end, number, note); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := sqlx.GetContext(ctx, r.db, &b, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) UpdateNote(ctx context.Context, id int, note *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE bookings SET note = $2 WHERE id = $1`, id, note)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) ForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE zone_id = $1 AND start < $3 AND "end" > $2
		ORDER BY start
	`

	var bookings []Booking
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, zoneID, from, to); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ForUser(ctx context.Context, gymID, userID int) ([]Booking, error) {
	query := `
		SELECT b.id, b.zone_id, b.user_id, b.start, b."end", b.number, b.note, b.created_at
		FROM bookings b
		JOIN zones z ON z.id = b.zone_id
		WHERE z.gym_id = $1 AND b.user_id = $2
		ORDER BY b.start
	`

	var bookings []Booking
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, gymID, userID); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) UpcomingForUser(ctx context.Context, gymID, userID int, now time.Time) ([]Booking, error) {
	query := `
		SELECT b.id, b.zone_id, b.user_id, b.start, b."end", b.number, b.note, b.created_at
		FROM bookings b
		JOIN zones z ON z.id = b.zone_id
		WHERE z.gym_id = $1 AND b.user_id = $2 AND b."end" >= $3
		ORDER BY b.start
	`

	var bookings []Booking
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, gymID, userID, now); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) CreateRecurring(ctx context.Context, zoneID int, start, end time.Time, number int, repeatEnd *time.Time, note *string) (*RecurringBooking, error) {
	query := `
		INSERT INTO recurring_bookings (zone_id, start, "end", number, repeat, repeat_end, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recurringColumns

	var rb RecurringBooking
	if err := sqlx.GetContext(ctx, r.db, &rb, query, zoneID, start, end, number, RepeatWeekly, repeatEnd, note); err != nil {
		return nil, err
	}
	return &rb, nil
}

func (r *repository) GetRecurringByID(ctx context.Context, id int) (*RecurringBooking, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_bookings WHERE id = $1`

	var rb RecurringBooking
	err := sqlx.GetContext(ctx, r.db, &rb, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rb, nil
}

func (r *repository) DeleteRecurring(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recurring_bookings WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) RecurringForZone(ctx context.Context, zoneID int, from, to time.Time) ([]RecurringBooking, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_bookings
		WHERE zone_id = $1 AND start < $3 AND (repeat_end IS NULL OR repeat_end >= $2)
		ORDER BY start
	`

	var templates []RecurringBooking
	if err := sqlx.SelectContext(ctx, r.db, &templates, query, zoneID, from, to); err != nil {
		return nil, err
	}
	return templates, nil
}
