package occupancy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gedemagt/booking/internal/timeslot"
)

type fakeSource struct {
	entries   []Entry
	templates []Template
}

func (f *fakeSource) EntriesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Entry, error) {
	return f.entries, nil
}

func (f *fakeSource) TemplatesForZone(ctx context.Context, zoneID int, from, to time.Time) ([]Template, error) {
	return f.templates, nil
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func TestBuildDaySingleBooking(t *testing.T) {
	src := &fakeSource{entries: []Entry{
		{Start: at(2024, time.March, 4, 10, 0), End: at(2024, time.March, 4, 10, 30), Number: 7, UserID: 1},
	}}

	m, err := NewBuilder(src).BuildDay(context.Background(), 1, at(2024, time.March, 4, 12, 0), 1)
	require.NoError(t, err)

	require.Equal(t, timeslot.SlotsPerDay, m.Slots)
	assert.Equal(t, 7, m.Total[40]) // 10:00
	assert.Equal(t, 7, m.Total[41]) // 10:15
	assert.Equal(t, 0, m.Total[42]) // 10:30 not included, half-open
	assert.Equal(t, 7*2, sum(m.Total))

	assert.Equal(t, m.Total, m.Mine)
	assert.Equal(t, 1, m.MyBookings)
}

func TestBuildSubtotalsSeparateActors(t *testing.T) {
	src := &fakeSource{entries: []Entry{
		{Start: at(2024, time.March, 4, 10, 0), End: at(2024, time.March, 4, 11, 0), Number: 2, UserID: 1},
		{Start: at(2024, time.March, 4, 10, 30), End: at(2024, time.March, 4, 11, 30), Number: 3, UserID: 2},
	}}

	m, err := NewBuilder(src).BuildDay(context.Background(), 1, at(2024, time.March, 4, 0, 0), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Total[40])   // only user 1
	assert.Equal(t, 5, m.Total[42])   // both overlap 10:30-11:00
	assert.Equal(t, 3, m.Total[44])   // only user 2
	assert.Equal(t, 2, m.Mine[42])    // subtotal ignores user 2
	assert.Equal(t, 0, m.Mine[44])
	assert.Equal(t, 1, m.MyBookings)
}

func TestBuildClipsPartialOverlap(t *testing.T) {
	// Booking overlaps only the first hour of the window.
	src := &fakeSource{entries: []Entry{
		{Start: at(2024, time.March, 4, 11, 0), End: at(2024, time.March, 4, 13, 0), Number: 1, UserID: 9},
	}}

	from := at(2024, time.March, 4, 12, 0)
	to := at(2024, time.March, 4, 14, 0)
	m, err := NewBuilder(src).Build(context.Background(), 1, from, to, 0)
	require.NoError(t, err)

	require.Equal(t, 8, m.Slots)
	assert.Equal(t, []int{1, 1, 1, 1, 0, 0, 0, 0}, m.Total)
}

func TestBuildIgnoresBookingOutsideWindow(t *testing.T) {
	src := &fakeSource{entries: []Entry{
		{Start: at(2024, time.March, 3, 10, 0), End: at(2024, time.March, 3, 11, 0), Number: 5, UserID: 1},
	}}

	m, err := NewBuilder(src).BuildDay(context.Background(), 1, at(2024, time.March, 4, 0, 0), 1)
	require.NoError(t, err)

	assert.Equal(t, 0, sum(m.Total))
	assert.Equal(t, 0, m.MyBookings)
}

func TestBuildWeekExpandsRecurring(t *testing.T) {
	// Weekly Monday 09:00-10:00 for 2 people, window spanning three Mondays.
	src := &fakeSource{templates: []Template{
		{Start: at(2024, time.March, 4, 9, 0), End: at(2024, time.March, 4, 10, 0), Number: 2},
	}}

	from := at(2024, time.March, 4, 0, 0)
	to := at(2024, time.March, 25, 0, 0)
	m, err := NewBuilder(src).Build(context.Background(), 1, from, to, 1)
	require.NoError(t, err)

	for day := 0; day < 21; day++ {
		offset := day * timeslot.SlotsPerDay
		want := 0
		if day%7 == 0 { // the Mondays
			want = 2
		}
		for s := 0; s < 4; s++ {
			assert.Equal(t, want, m.Total[offset+36+s], "day %d slot %d", day, s)
		}
		assert.Equal(t, 0, m.Total[offset+40], "day %d 10:00", day)
	}

	// Recurring occurrences are nobody's own bookings.
	assert.Equal(t, 0, sum(m.Mine))
	assert.Equal(t, 0, m.MyBookings)
}

func TestBuildConsistencyLaw(t *testing.T) {
	// Total over the window equals the sum of every clipped contribution.
	src := &fakeSource{
		entries: []Entry{
			{Start: at(2024, time.March, 4, 8, 0), End: at(2024, time.March, 4, 9, 0), Number: 3, UserID: 1},
			{Start: at(2024, time.March, 5, 23, 0), End: at(2024, time.March, 5, 23, 45), Number: 2, UserID: 2},
		},
		templates: []Template{
			{Start: at(2024, time.March, 4, 9, 0), End: at(2024, time.March, 4, 10, 0), Number: 2},
		},
	}

	from := at(2024, time.March, 4, 0, 0)
	to := at(2024, time.March, 11, 0, 0)
	m, err := NewBuilder(src).Build(context.Background(), 1, from, to, 1)
	require.NoError(t, err)

	want := 3*4 + 2*3 + 2*4 // booking1 + booking2 + one Monday occurrence
	assert.Equal(t, want, sum(m.Total))
}

func TestBuildIdempotent(t *testing.T) {
	src := &fakeSource{
		entries: []Entry{
			{Start: at(2024, time.March, 4, 8, 0), End: at(2024, time.March, 4, 9, 0), Number: 3, UserID: 1},
		},
		templates: []Template{
			{Start: at(2024, time.March, 4, 9, 0), End: at(2024, time.March, 4, 10, 0), Number: 2},
		},
	}
	b := NewBuilder(src)

	first, err := b.BuildDay(context.Background(), 1, at(2024, time.March, 4, 0, 0), 1)
	require.NoError(t, err)
	second, err := b.BuildDay(context.Background(), 1, at(2024, time.March, 4, 0, 0), 1)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Mine, second.Mine)
}

func TestPeak(t *testing.T) {
	m := &Map{Slots: 4, Total: []int{1, 5, 3, 2}}

	assert.Equal(t, 5, m.Peak(0, 4))
	assert.Equal(t, 3, m.Peak(2, 4))
	assert.Equal(t, 5, m.Peak(-10, 99))
	assert.Equal(t, 0, m.Peak(2, 2))
}
