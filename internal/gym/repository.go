package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound  = errors.New("gym not found")
	ErrZoneNotFound = errors.New("zone not found")
)

const gymColumns = `id, name, code, max_people, max_booking_length, max_booking_per_user,
	max_time_per_user_per_day, max_number_per_booking, max_days_ahead, book_before, created_at`

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

func (r *repository) CreateGym(ctx context.Context, name, code string) (*Gym, error) {
	query := `
		INSERT INTO gyms (name, code)
		VALUES ($1, $2)
		RETURNING ` + gymColumns

	var g Gym
	if err := sqlx.GetContext(ctx, r.db, &g, query, name, code); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE id = $1`

	var g Gym
	err := sqlx.GetContext(ctx, r.db, &g, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) GetGymByCode(ctx context.Context, code string) (*Gym, error) {
	query := `SELECT ` + gymColumns + ` FROM gyms WHERE code = $1`

	var g Gym
	err := sqlx.GetContext(ctx, r.db, &g, query, code)
	if err == sql.ErrNoRows {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) GetGymForZone(ctx context.Context, zoneID int) (*Gym, error) {
	query := `
		SELECT g.id, g.name, g.code, g.max_people, g.max_booking_length, g.max_booking_per_user,
			g.max_time_per_user_per_day, g.max_number_per_booking, g.max_days_ahead, g.book_before, g.created_at
		FROM gyms g
		JOIN zones z ON z.gym_id = g.id
		WHERE z.id = $1
	`

	var g Gym
	err := sqlx.GetContext(ctx, r.db, &g, query, zoneID)
	if err == sql.ErrNoRows {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) UpdateSettings(ctx context.Context, gymID int, req UpdateSettingsRequest) (*Gym, error) {
	query := `
		UPDATE gyms
		SET max_people = $2,
			max_booking_length = $3,
			max_booking_per_user = $4,
			max_time_per_user_per_day = $5,
			max_number_per_booking = $6,
			max_days_ahead = $7,
			book_before = $8
		WHERE id = $1
		RETURNING ` + gymColumns

	var g Gym
	err := sqlx.GetContext(ctx, r.db, &g, query, gymID,
		req.MaxPeople, req.MaxBookingLength, req.MaxBookingPerUser,
		req.MaxTimePerUserPerDay, req.MaxNumberPerBooking, req.MaxDaysAhead, req.BookBefore)
	if err == sql.ErrNoRows {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) CreateZone(ctx context.Context, gymID int, name string, maxPeople *int) (*Zone, error) {
	query := `
		INSERT INTO zones (gym_id, name, max_people)
		VALUES ($1, $2, $3)
		RETURNING id, gym_id, name, max_people, created_at
	`

	var z Zone
	if err := sqlx.GetContext(ctx, r.db, &z, query, gymID, name, maxPeople); err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *repository) GetZoneByID(ctx context.Context, id int) (*Zone, error) {
	query := `SELECT id, gym_id, name, max_people, created_at FROM zones WHERE id = $1`

	var z Zone
	err := sqlx.GetContext(ctx, r.db, &z, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

func (r *repository) LockZone(ctx context.Context, id int) error {
	query := `SELECT id FROM zones WHERE id = $1 FOR UPDATE`

	var zoneID int
	err := sqlx.GetContext(ctx, r.db, &zoneID, query, id)
	if err == sql.ErrNoRows {
		return ErrZoneNotFound
	}
	return err
}

func (r *repository) GetZonesByGym(ctx context.Context, gymID int) ([]Zone, error) {
	query := `SELECT id, gym_id, name, max_people, created_at FROM zones WHERE gym_id = $1 ORDER BY name`

	var zones []Zone
	if err := sqlx.SelectContext(ctx, r.db, &zones, query, gymID); err != nil {
		return nil, err
	}
	return zones, nil
}

// DeleteZone removes the zone; its bookings cascade at the schema level.
func (r *repository) DeleteZone(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrZoneNotFound
	}
	return nil
}

func (r *repository) AddMember(ctx context.Context, gymID, userID int) error {
	query := `
		INSERT INTO gym_memberships (gym_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, gymID, userID)
	return err
}

func (r *repository) IsMember(ctx context.Context, gymID, userID int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM gym_memberships WHERE gym_id = $1 AND user_id = $2)`, gymID, userID)
}

func (r *repository) SetAdmin(ctx context.Context, gymID, userID int, admin bool) error {
	return r.setRole(ctx, "gym_admins", gymID, userID, admin)
}

func (r *repository) IsAdmin(ctx context.Context, gymID, userID int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM gym_admins WHERE gym_id = $1 AND user_id = $2)`, gymID, userID)
}

func (r *repository) SetInstructor(ctx context.Context, gymID, userID int, instructor bool) error {
	return r.setRole(ctx, "gym_instructors", gymID, userID, instructor)
}

func (r *repository) IsInstructor(ctx context.Context, gymID, userID int) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM gym_instructors WHERE gym_id = $1 AND user_id = $2)`, gymID, userID)
}

func (r *repository) setRole(ctx context.Context, table string, gymID, userID int, grant bool) error {
	var query string
	if grant {
		query = `INSERT INTO ` + table + ` (gym_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	} else {
		query = `DELETE FROM ` + table + ` WHERE gym_id = $1 AND user_id = $2`
	}
	_, err := r.db.ExecContext(ctx, query, gymID, userID)
	return err
}

func (r *repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return exists, err
}
