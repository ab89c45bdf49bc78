// Package policy validates proposed reservations against a gym's layered
// constraint set. Checks run as an ordered chain and stop at the first
// violation, so callers always receive a single reason.
package policy

import (
	"context"
	"time"

	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/occupancy"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Actor is the user attempting a reservation. It is always passed
// explicitly; the engine never reads ambient session state.
type Actor struct {
	ID         int
	Role       string
	GymAdmin   bool
	Instructor bool
}

// Privileged actors bypass per-user limits but never physical capacity.
func (a Actor) Privileged() bool {
	return a.GymAdmin || a.Instructor || a.Role == RoleAdmin
}

// Proposal is a reservation awaiting validation.
type Proposal struct {
	ZoneID int
	Start  time.Time
	End    time.Time
	Number int
}

// Violation is the expected, user-facing outcome of a failed check. It is
// not a system error: handlers render Reason and carry on.
type Violation struct {
	Check  string `json:"check"`
	Reason string `json:"reason"`
}

func (v *Violation) Error() string {
	return v.Reason
}

// ZoneRemoved is the violation reported when the referenced zone no longer
// exists, shared with commit paths that discover the deletion while locking.
func ZoneRemoved() *Violation {
	return &Violation{Check: "zone_exists", Reason: "Zone has been removed"}
}

// ZoneSource resolves zones; a deleted zone returns gym.ErrZoneNotFound.
type ZoneSource interface {
	GetZoneByID(ctx context.Context, id int) (*gym.Zone, error)
}

// OccupancySource materializes the occupancy timeline for the proposal's day.
type OccupancySource interface {
	BuildDay(ctx context.Context, zoneID int, t time.Time, actorID int) (*occupancy.Map, error)
}

// BookingSource lists an actor's own bookings within a gym.
type BookingSource interface {
	EntriesForUser(ctx context.Context, gymID, userID int) ([]occupancy.Entry, error)
}
