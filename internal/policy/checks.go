package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/gedemagt/booking/internal/timeslot"
)

type CheckFunc func(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error)

// Check is one link of the validation chain. SkipPrivileged marks per-user
// limits that gym admins, instructors and global admins bypass; capacity
// and the structural checks are never skipped.
type Check struct {
	Name           string
	SkipPrivileged bool
	Fn             CheckFunc
}

// DefaultChecks returns the standard chain. The order is a behavioral
// contract: only the first violation is ever reported.
func DefaultChecks() []Check {
	return []Check{
		{Name: "zone_exists", Fn: checkZoneExists},
		{Name: "same_day", Fn: checkSameDay},
		{Name: "ordering", Fn: checkOrdering},
		{Name: "capacity", Fn: checkCapacity},
		{Name: "max_per_booking", SkipPrivileged: true, Fn: checkMaxPerBooking},
		{Name: "lookahead", SkipPrivileged: true, Fn: checkLookahead},
		{Name: "overlap", SkipPrivileged: true, Fn: checkOverlap},
		{Name: "max_length", SkipPrivileged: true, Fn: checkMaxLength},
		{Name: "active_cap", SkipPrivileged: true, Fn: checkActiveCap},
		{Name: "daily_budget", SkipPrivileged: true, Fn: checkDailyBudget},
	}
}

func checkZoneExists(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	zone, err := st.resolveZone(ctx, ev, p.ZoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return ZoneRemoved(), nil
	}
	return nil, nil
}

func checkSameDay(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if !timeslot.SameDay(p.Start, p.End) {
		return &Violation{Reason: "Start and end must be on the same day"}, nil
	}
	return nil, nil
}

func checkOrdering(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if !p.Start.Before(p.End) {
		return &Violation{Reason: "Start must come before end"}, nil
	}
	return nil, nil
}

// checkCapacity adds the proposal to the day's occupancy and verifies no
// slot in the proposed range ends up above the effective capacity. Landing
// exactly at capacity passes.
func checkCapacity(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	zone, err := st.resolveZone(ctx, ev, p.ZoneID)
	if err != nil {
		return nil, err
	}

	m, err := ev.occ.BuildDay(ctx, p.ZoneID, p.Start, actor.ID)
	if err != nil {
		return nil, err
	}

	day := timeslot.StartOfDay(p.Start)
	peak := m.Peak(timeslot.Index(p.Start, day), timeslot.Index(p.End, day))

	if peak+p.Number > EffectiveCapacity(st.gym, zone) {
		if zone != nil && zone.MaxPeople != nil {
			return &Violation{Reason: "Booking exceeds zone capacity"}, nil
		}
		return &Violation{Reason: "Booking exceeds gym capacity"}, nil
	}
	return nil, nil
}

func checkMaxPerBooking(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	max := EffectiveMaxPerBooking(st.gym)
	if p.Number > max {
		return &Violation{Reason: fmt.Sprintf("Max persons per booking is %d", max)}, nil
	}
	return nil, nil
}

func checkLookahead(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if st.gym.MaxDaysAhead == nil {
		return nil, nil
	}

	horizon := timeslot.StartOfDay(ev.now()).AddDate(0, 0, *st.gym.MaxDaysAhead)
	if timeslot.StartOfDay(p.Start).After(horizon) {
		return &Violation{Reason: fmt.Sprintf("Bookings can only be made %d days into the future", *st.gym.MaxDaysAhead)}, nil
	}
	return nil, nil
}

func checkOverlap(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	mine, err := st.ownBookings(ctx, ev, actor.ID)
	if err != nil {
		return nil, err
	}

	for _, x := range mine {
		// Half-open intervals: touching boundaries do not overlap.
		if (!p.Start.After(x.Start) && x.Start.Before(p.End)) ||
			(p.Start.Before(x.End) && !x.End.After(p.End)) ||
			(!x.Start.After(p.Start) && !x.End.Before(p.End)) {
			return &Violation{Reason: "Selection is overlapping with another booking"}, nil
		}
	}
	return nil, nil
}

func checkMaxLength(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if st.gym.MaxBookingLength == nil {
		return nil, nil
	}

	if timeslot.InSlots(p.End.Sub(p.Start)) > *st.gym.MaxBookingLength {
		return &Violation{Reason: fmt.Sprintf("Max booking length is %s", timeslot.FormatSlots(*st.gym.MaxBookingLength))}, nil
	}
	return nil, nil
}

// checkActiveCap counts the actor's bookings whose end, minus the gym's
// book-before grace, is still in the future.
func checkActiveCap(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if st.gym.MaxBookingPerUser == nil {
		return nil, nil
	}

	mine, err := st.ownBookings(ctx, ev, actor.ID)
	if err != nil {
		return nil, err
	}

	grace := time.Duration(st.gym.BookBefore) * timeslot.Length
	now := ev.now()

	active := 0
	for _, x := range mine {
		if !x.End.Add(-grace).Before(now) {
			active++
		}
	}

	if active >= *st.gym.MaxBookingPerUser {
		return &Violation{Reason: fmt.Sprintf("You can only have %d active bookings", *st.gym.MaxBookingPerUser)}, nil
	}
	return nil, nil
}

func checkDailyBudget(ctx context.Context, ev *Evaluator, st *state, p Proposal, actor Actor) (*Violation, error) {
	if st.gym.MaxTimePerUserPerDay == nil {
		return nil, nil
	}

	mine, err := st.ownBookings(ctx, ev, actor.ID)
	if err != nil {
		return nil, err
	}

	total := p.End.Sub(p.Start)
	for _, x := range mine {
		if timeslot.SameDay(x.Start, p.Start) {
			total += x.End.Sub(x.Start)
		}
	}

	if timeslot.InSlots(total) > *st.gym.MaxTimePerUserPerDay {
		return &Violation{Reason: fmt.Sprintf("You cannot book more than %s per day", timeslot.FormatSlots(*st.gym.MaxTimePerUserPerDay))}, nil
	}
	return nil, nil
}
