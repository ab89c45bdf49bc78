package policy

import (
	"context"
	"errors"
	"time"

	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/occupancy"
)

type Evaluator struct {
	zones    ZoneSource
	occ      OccupancySource
	bookings BookingSource
	now      func() time.Time
	checks   []Check
}

type Option func(*Evaluator)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(ev *Evaluator) { ev.now = now }
}

// WithChecks replaces the default chain. Order is part of the contract:
// the first failing check's reason is the one reported.
func WithChecks(checks []Check) Option {
	return func(ev *Evaluator) { ev.checks = checks }
}

func NewEvaluator(zones ZoneSource, occ OccupancySource, bookings BookingSource, opts ...Option) *Evaluator {
	ev := &Evaluator{
		zones:    zones,
		occ:      occ,
		bookings: bookings,
		now:      time.Now,
		checks:   DefaultChecks(),
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// state carries lazily resolved data shared between checks of one
// Validate call, so reordering the chain never changes what a check sees.
type state struct {
	gym *gym.Gym

	zone       *gym.Zone
	zoneLoaded bool

	mine       []occupancy.Entry
	mineLoaded bool
}

func (st *state) resolveZone(ctx context.Context, ev *Evaluator, zoneID int) (*gym.Zone, error) {
	if st.zoneLoaded {
		return st.zone, nil
	}

	z, err := ev.zones.GetZoneByID(ctx, zoneID)
	if errors.Is(err, gym.ErrZoneNotFound) {
		st.zoneLoaded = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if z.GymID != st.gym.ID {
		// A zone from another gym is as good as deleted here.
		st.zoneLoaded = true
		return nil, nil
	}

	st.zone = z
	st.zoneLoaded = true
	return z, nil
}

func (st *state) ownBookings(ctx context.Context, ev *Evaluator, actorID int) ([]occupancy.Entry, error) {
	if st.mineLoaded {
		return st.mine, nil
	}

	entries, err := ev.bookings.EntriesForUser(ctx, st.gym.ID, actorID)
	if err != nil {
		return nil, err
	}

	st.mine = entries
	st.mineLoaded = true
	return entries, nil
}

// Validate runs the chain against the proposal. A nil, nil return means the
// proposal passes. A non-nil *Violation is the expected rejection path; a
// non-nil error is a system failure.
func (ev *Evaluator) Validate(ctx context.Context, g *gym.Gym, p Proposal, actor Actor) (*Violation, error) {
	st := &state{gym: g}

	for _, check := range ev.checks {
		if check.SkipPrivileged && actor.Privileged() {
			continue
		}

		v, err := check.Fn(ctx, ev, st, p, actor)
		if err != nil {
			return nil, err
		}
		if v != nil {
			if v.Check == "" {
				v.Check = check.Name
			}
			return v, nil
		}
	}

	return nil, nil
}
