package gym

import "time"

// Gym is the tenant root. Nullable limits disable the corresponding
// policy check when unset. All slot-denominated limits count 15-minute
// quarters.
type Gym struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Code string `db:"code" json:"code"`

	MaxPeople            int  `db:"max_people" json:"max_people"`
	MaxBookingLength     *int `db:"max_booking_length" json:"max_booking_length,omitempty"`
	MaxBookingPerUser    *int `db:"max_booking_per_user" json:"max_booking_per_user,omitempty"`
	MaxTimePerUserPerDay *int `db:"max_time_per_user_per_day" json:"max_time_per_user_per_day,omitempty"`
	MaxNumberPerBooking  *int `db:"max_number_per_booking" json:"max_number_per_booking,omitempty"`
	MaxDaysAhead         *int `db:"max_days_ahead" json:"max_days_ahead,omitempty"`

	// BookBefore is the grace period, in quarters before a booking's end,
	// at which it stops counting as active.
	BookBefore int `db:"book_before" json:"book_before"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Zone is an independently capacity-constrained area within a gym.
// MaxPeople overrides the gym capacity when set.
type Zone struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	Name      string    `db:"name" json:"name"`
	MaxPeople *int      `db:"max_people" json:"max_people,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateZoneRequest struct {
	Name      string `json:"name" binding:"required"`
	MaxPeople *int   `json:"max_people" binding:"omitempty,min=1"`
}

type UpdateSettingsRequest struct {
	MaxPeople            int  `json:"max_people" binding:"required,min=1"`
	MaxBookingLength     *int `json:"max_booking_length" binding:"omitempty,min=1"`
	MaxBookingPerUser    *int `json:"max_booking_per_user" binding:"omitempty,min=1"`
	MaxTimePerUserPerDay *int `json:"max_time_per_user_per_day" binding:"omitempty,min=1"`
	MaxNumberPerBooking  *int `json:"max_number_per_booking" binding:"omitempty,min=1"`
	MaxDaysAhead         *int `json:"max_days_ahead" binding:"omitempty,min=0"`
	BookBefore           int  `json:"book_before" binding:"min=0"`
}

type JoinRequest struct {
	Code string `json:"code" binding:"required"`
}
