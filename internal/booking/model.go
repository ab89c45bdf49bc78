package booking

import "time"

// Booking is a one-off reservation. Start and end fall on the same
// calendar day; only the note is ever updated in place.
type Booking struct {
	ID        int       `db:"id" json:"id"`
	ZoneID    int       `db:"zone_id" json:"zone_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Start     time.Time `db:"start" json:"start"`
	End       time.Time `db:"end" json:"end"`
	Number    int       `db:"number" json:"number"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RecurringBooking is an admin-authored template generating weekly
// occurrences. It is not tied to a user and counts toward everyone's
// occupancy.
type RecurringBooking struct {
	ID        int        `db:"id" json:"id"`
	ZoneID    int        `db:"zone_id" json:"zone_id"`
	Start     time.Time  `db:"start" json:"start"`
	End       time.Time  `db:"end" json:"end"`
	Number    int        `db:"number" json:"number"`
	Repeat    string     `db:"repeat" json:"repeat"`
	RepeatEnd *time.Time `db:"repeat_end" json:"repeat_end,omitempty"`
	Note      *string    `db:"note" json:"note,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

const RepeatWeekly = "weekly"

type CreateRequest struct {
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
	Number int       `json:"number" binding:"required,min=1"`
	Note   *string   `json:"note"`
}

type CreateRecurringRequest struct {
	Start     time.Time  `json:"start" binding:"required"`
	End       time.Time  `json:"end" binding:"required"`
	Number    int        `json:"number" binding:"required,min=1"`
	RepeatEnd *time.Time `json:"repeat_end"`
	Note      *string    `json:"note"`
}

type UpdateNoteRequest struct {
	Note *string `json:"note"`
}
