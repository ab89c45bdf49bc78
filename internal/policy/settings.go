package policy

import "github.com/gedemagt/booking/internal/gym"

// Setting fallbacks live here and nowhere else.

// EffectiveCapacity is the zone's capacity override, else the gym capacity.
func EffectiveCapacity(g *gym.Gym, z *gym.Zone) int {
	if z != nil && z.MaxPeople != nil {
		return *z.MaxPeople
	}
	return g.MaxPeople
}

// EffectiveMaxPerBooking is the gym's per-booking headcount cap, else the
// gym capacity.
func EffectiveMaxPerBooking(g *gym.Gym) int {
	if g.MaxNumberPerBooking != nil {
		return *g.MaxNumberPerBooking
	}
	return g.MaxPeople
}
