package booking

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/policy"
)

var svcNow = time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC) // a Monday

func newServiceWithMock(t *testing.T) (Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	repo := NewRepository(db)
	gyms := gym.NewRepository(db)

	svc := NewService(db, repo, gyms, WithClock(func() time.Time { return svcNow }))
	return svc, mock
}

func gymRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "code", "max_people", "max_booking_length", "max_booking_per_user",
		"max_time_per_user_per_day", "max_number_per_booking", "max_days_ahead", "book_before", "created_at",
	}).AddRow(1, "Boulders", "BLDR", 10, nil, nil, nil, nil, nil, 0, svcNow)
}

func zoneRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "gym_id", "name", "max_people", "created_at"}).
		AddRow(5, 1, "Cave", nil, svcNow)
}

func boolRow(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(v)
}

func emptyBookings() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "zone_id", "user_id", "start", "end", "number", "note", "created_at"})
}

func emptyTemplates() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "zone_id", "start", "end", "number", "repeat", "repeat_end", "note", "created_at"})
}

// expectActorLookup covers the membership and role probes run inside the
// booking transaction.
func expectActorLookup(mock sqlmock.Sqlmock, member, admin, instructor bool) {
	mock.ExpectQuery(`FROM gym_memberships`).WithArgs(1, 7).WillReturnRows(boolRow(member))
	if member {
		mock.ExpectQuery(`FROM gym_admins`).WithArgs(1, 7).WillReturnRows(boolRow(admin))
		mock.ExpectQuery(`FROM gym_instructors`).WithArgs(1, 7).WillReturnRows(boolRow(instructor))
	}
}

func TestCreateCommitsInOneTransaction(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, true, false, false)
	mock.ExpectQuery(`FROM zones WHERE id`).WithArgs(5).WillReturnRows(zoneRow())
	mock.ExpectQuery(`FROM bookings\s+WHERE zone_id`).WillReturnRows(emptyBookings())
	mock.ExpectQuery(`FROM recurring_bookings`).WillReturnRows(emptyTemplates())
	mock.ExpectQuery(`FROM bookings b`).WithArgs(1, 7).WillReturnRows(emptyBookings())
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(5, 7, start, end, 2, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "zone_id", "user_id", "start", "end", "number", "note", "created_at"}).
			AddRow(42, 5, 7, start, end, 2, nil, svcNow))
	mock.ExpectCommit()

	b, err := svc.Create(context.Background(), 7, policy.RoleUser, 5, CreateRequest{
		Start: start, End: end, Number: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, b.ID)
	assert.Equal(t, 2, b.Number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateViolationRollsBack(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	end := start.Add(24 * time.Hour) // crosses midnight

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, true, false, false)
	mock.ExpectQuery(`FROM zones WHERE id`).WithArgs(5).WillReturnRows(zoneRow())
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), 7, policy.RoleUser, 5, CreateRequest{
		Start: start, End: end, Number: 2,
	})

	var v *policy.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "same_day", v.Check)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateZoneDeletedWhileLocking(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), 7, policy.RoleUser, 5, CreateRequest{
		Start: start, End: start.Add(time.Hour), Number: 1,
	})

	var v *policy.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "zone_exists", v.Check)
	assert.Equal(t, "Zone has been removed", v.Reason)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsNonMembers(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, false, false, false)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), 7, policy.RoleUser, 5, CreateRequest{
		Start: start, End: start.Add(time.Hour), Number: 1,
	})
	assert.ErrorIs(t, err, ErrNotMember)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// The capacity check runs against the occupancy visible inside the
// transaction, after the zone row lock. A booking that would push a slot
// past capacity is rejected and nothing is inserted.
func TestCreateCapacityObservedUnderLock(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	end := start.Add(time.Hour)

	existing := sqlmock.NewRows([]string{"id", "zone_id", "user_id", "start", "end", "number", "note", "created_at"}).
		AddRow(11, 5, 9, start, end, 8, nil, svcNow)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, true, false, false)
	mock.ExpectQuery(`FROM zones WHERE id`).WithArgs(5).WillReturnRows(zoneRow())
	mock.ExpectQuery(`FROM bookings\s+WHERE zone_id`).WillReturnRows(existing)
	mock.ExpectQuery(`FROM recurring_bookings`).WillReturnRows(emptyTemplates())
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), 7, policy.RoleUser, 5, CreateRequest{
		Start: start, End: end, Number: 3, // 8 + 3 > 10
	})

	var v *policy.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "capacity", v.Check)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecurringRequiresPrivilege(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, true, false, false)
	mock.ExpectRollback()

	_, err := svc.CreateRecurring(context.Background(), 7, policy.RoleUser, 5, CreateRecurringRequest{
		Start: start, End: start.Add(time.Hour), Number: 4,
	})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecurringCommitsForGymAdmin(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	end := start.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`FROM gyms g`).WithArgs(5).WillReturnRows(gymRow())
	expectActorLookup(mock, true, true, false)
	mock.ExpectQuery(`FROM zones WHERE id`).WithArgs(5).WillReturnRows(zoneRow())
	mock.ExpectQuery(`FROM bookings\s+WHERE zone_id`).WillReturnRows(emptyBookings())
	mock.ExpectQuery(`FROM recurring_bookings`).WillReturnRows(emptyTemplates())
	mock.ExpectQuery(`INSERT INTO recurring_bookings`).
		WithArgs(5, start, end, 4, RepeatWeekly, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "zone_id", "start", "end", "number", "repeat", "repeat_end", "note", "created_at"}).
			AddRow(3, 5, start, end, 4, RepeatWeekly, nil, nil, svcNow))
	mock.ExpectCommit()

	rb, err := svc.CreateRecurring(context.Background(), 7, policy.RoleUser, 5, CreateRecurringRequest{
		Start: start, End: end, Number: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, RepeatWeekly, rb.Repeat)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNoteOnlyByOwner(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "zone_id", "user_id", "start", "end", "number", "note", "created_at"}).
			AddRow(42, 5, 9, start, start.Add(time.Hour), 1, nil, svcNow))

	note := "bring chalk"
	err := svc.UpdateNote(context.Background(), 7, 42, &note)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByOwner(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	start := svcNow.Add(2 * time.Hour)
	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "zone_id", "user_id", "start", "end", "number", "note", "created_at"}).
			AddRow(42, 5, 7, start, start.Add(time.Hour), 1, nil, svcNow))
	mock.ExpectExec(`DELETE FROM bookings`).WithArgs(42).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Delete(context.Background(), 7, policy.RoleUser, 42)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingBooking(t *testing.T) {
	svc, mock := newServiceWithMock(t)

	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs(42).WillReturnError(sql.ErrNoRows)

	err := svc.Delete(context.Background(), 7, policy.RoleUser, 42)
	assert.True(t, errors.Is(err, ErrBookingNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
