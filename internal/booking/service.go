package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/logger"
	"github.com/gedemagt/booking/internal/metrics"
	"github.com/gedemagt/booking/internal/occupancy"
	"github.com/gedemagt/booking/internal/policy"
)

var (
	ErrNotMember = errors.New("user is not a member of this gym")
	ErrForbidden = errors.New("insufficient permissions")
)

type Service interface {
	// Create validates and commits a one-off booking. A policy violation is
	// returned as a *policy.Violation error; nothing is persisted in that
	// case.
	Create(ctx context.Context, userID int, role string, zoneID int, req CreateRequest) (*Booking, error)
	// CreateRecurring commits a weekly template. Gym admins and instructors
	// only; capacity is still enforced.
	CreateRecurring(ctx context.Context, userID int, role string, zoneID int, req CreateRecurringRequest) (*RecurringBooking, error)
	Delete(ctx context.Context, userID int, role string, bookingID int) error
	DeleteRecurring(ctx context.Context, userID int, role string, id int) error
	UpdateNote(ctx context.Context, userID, bookingID int, note *string) error
	MyBookings(ctx context.Context, gymID, userID int) ([]Booking, error)
	ZoneBookings(ctx context.Context, zoneID int, from, to time.Time) ([]Booking, error)
	DayOccupancy(ctx context.Context, zoneID int, day time.Time, actorID int) (*occupancy.Map, error)
	WeekOccupancy(ctx context.Context, zoneID int, t time.Time, actorID int) (*occupancy.Map, error)
}

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, userID int, b *Booking)
}

type service struct {
	db       *sqlx.DB
	repo     Repository
	gyms     gym.Repository
	notifier Notifier
	now      func() time.Time
	checks   []policy.Check
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func WithChecks(checks []policy.Check) Option {
	return func(s *service) { s.checks = checks }
}

// WithNotifier wires confirmation delivery. Notification failures never
// affect a committed booking.
func WithNotifier(n Notifier) Option {
	return func(s *service) { s.notifier = n }
}

func NewService(db *sqlx.DB, repo Repository, gyms gym.Repository, opts ...Option) Service {
	s := &service{
		db:     db,
		repo:   repo,
		gyms:   gyms,
		now:    time.Now,
		checks: policy.DefaultChecks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create runs lock, validate and insert as one transaction. The row lock on
// the zone serializes concurrent attempts, so the capacity check always
// observes every committed booking and no two commits can jointly exceed a
// slot's capacity.
func (s *service) Create(ctx context.Context, userID int, role string, zoneID int, req CreateRequest) (*Booking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txGyms := gym.WithTx(tx)
	txRepo := WithTx(tx)

	if err := txGyms.LockZone(ctx, zoneID); err != nil {
		if errors.Is(err, gym.ErrZoneNotFound) {
			metrics.RecordValidation("zone_exists")
			return nil, policy.ZoneRemoved()
		}
		return nil, err
	}

	g, err := txGyms.GetGymForZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	actor, err := s.actorFor(ctx, txGyms, g.ID, userID, role)
	if err != nil {
		return nil, err
	}

	src := store{repo: txRepo}
	ev := policy.NewEvaluator(txGyms, timedBuilder{occupancy.NewBuilder(src)}, src,
		policy.WithClock(s.now), policy.WithChecks(s.checks))

	proposal := policy.Proposal{ZoneID: zoneID, Start: req.Start, End: req.End, Number: req.Number}
	v, err := ev.Validate(ctx, g, proposal, actor)
	if err != nil {
		return nil, err
	}
	if v != nil {
		metrics.RecordValidation(v.Check)
		return nil, v
	}
	metrics.RecordValidation("")

	b, err := txRepo.Create(ctx, zoneID, userID, req.Start, req.End, req.Number, req.Note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking("oneoff")
	logger.Info("booking created",
		"booking_id", b.ID, "zone_id", zoneID, "user_id", userID,
		"start", b.Start, "end", b.End, "number", b.Number)

	if s.notifier != nil {
		s.notifier.SendBookingConfirmation(ctx, userID, b)
	}

	return b, nil
}

func (s *service) CreateRecurring(ctx context.Context, userID int, role string, zoneID int, req CreateRecurringRequest) (*RecurringBooking, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txGyms := gym.WithTx(tx)
	txRepo := WithTx(tx)

	if err := txGyms.LockZone(ctx, zoneID); err != nil {
		if errors.Is(err, gym.ErrZoneNotFound) {
			return nil, policy.ZoneRemoved()
		}
		return nil, err
	}

	g, err := txGyms.GetGymForZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	actor, err := s.actorFor(ctx, txGyms, g.ID, userID, role)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() {
		return nil, ErrForbidden
	}

	if req.RepeatEnd != nil && req.RepeatEnd.Before(req.Start) {
		return nil, &policy.Violation{Check: "repeat_end", Reason: "Repeat end must not be before start"}
	}

	// A privileged actor runs the structural and capacity checks only,
	// which is exactly the constraint set a template must satisfy.
	src := store{repo: txRepo}
	ev := policy.NewEvaluator(txGyms, timedBuilder{occupancy.NewBuilder(src)}, src,
		policy.WithClock(s.now), policy.WithChecks(s.checks))

	proposal := policy.Proposal{ZoneID: zoneID, Start: req.Start, End: req.End, Number: req.Number}
	v, err := ev.Validate(ctx, g, proposal, actor)
	if err != nil {
		return nil, err
	}
	if v != nil {
		metrics.RecordValidation(v.Check)
		return nil, v
	}
	metrics.RecordValidation("")

	rb, err := txRepo.CreateRecurring(ctx, zoneID, req.Start, req.End, req.Number, req.RepeatEnd, req.Note)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordBooking("recurring")
	logger.Info("recurring booking created",
		"recurring_id", rb.ID, "zone_id", zoneID, "user_id", userID, "number", rb.Number)

	return rb, nil
}

func (s *service) Delete(ctx context.Context, userID int, role string, bookingID int) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	if b.UserID != userID {
		g, err := s.gyms.GetGymForZone(ctx, b.ZoneID)
		if err != nil {
			return err
		}
		actor, err := s.actorFor(ctx, s.gyms, g.ID, userID, role)
		if err != nil {
			return err
		}
		if !actor.Privileged() {
			return ErrForbidden
		}
	}

	if err := s.repo.Delete(ctx, bookingID); err != nil {
		return err
	}

	metrics.RecordBookingDeletion()
	logger.Info("booking deleted", "booking_id", bookingID, "by_user", userID)
	return nil
}

func (s *service) DeleteRecurring(ctx context.Context, userID int, role string, id int) error {
	rb, err := s.repo.GetRecurringByID(ctx, id)
	if err != nil {
		return err
	}

	g, err := s.gyms.GetGymForZone(ctx, rb.ZoneID)
	if err != nil {
		return err
	}
	actor, err := s.actorFor(ctx, s.gyms, g.ID, userID, role)
	if err != nil {
		return err
	}
	if !actor.Privileged() {
		return ErrForbidden
	}

	if err := s.repo.DeleteRecurring(ctx, id); err != nil {
		return err
	}

	metrics.RecordBookingDeletion()
	logger.Info("recurring booking deleted", "recurring_id", id, "by_user", userID)
	return nil
}

func (s *service) UpdateNote(ctx context.Context, userID, bookingID int, note *string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != userID {
		return ErrForbidden
	}

	return s.repo.UpdateNote(ctx, bookingID, note)
}

func (s *service) MyBookings(ctx context.Context, gymID, userID int) ([]Booking, error) {
	return s.repo.UpcomingForUser(ctx, gymID, userID, s.now())
}

func (s *service) ZoneBookings(ctx context.Context, zoneID int, from, to time.Time) ([]Booking, error) {
	return s.repo.ForZone(ctx, zoneID, from, to)
}

func (s *service) DayOccupancy(ctx context.Context, zoneID int, day time.Time, actorID int) (*occupancy.Map, error) {
	if _, err := s.gyms.GetZoneByID(ctx, zoneID); err != nil {
		return nil, err
	}
	return timedBuilder{occupancy.NewBuilder(store{repo: s.repo})}.BuildDay(ctx, zoneID, day, actorID)
}

func (s *service) WeekOccupancy(ctx context.Context, zoneID int, t time.Time, actorID int) (*occupancy.Map, error) {
	if _, err := s.gyms.GetZoneByID(ctx, zoneID); err != nil {
		return nil, err
	}
	return timedBuilder{occupancy.NewBuilder(store{repo: s.repo})}.BuildWeek(ctx, zoneID, t, actorID)
}

// actorFor assembles the explicit actor the engine requires; the engine
// itself never touches session state.
func (s *service) actorFor(ctx context.Context, gyms gym.Repository, gymID, userID int, role string) (policy.Actor, error) {
	actor := policy.Actor{ID: userID, Role: role}

	member, err := gyms.IsMember(ctx, gymID, userID)
	if err != nil {
		return actor, err
	}
	if !member && role != policy.RoleAdmin {
		return actor, ErrNotMember
	}

	if actor.GymAdmin, err = gyms.IsAdmin(ctx, gymID, userID); err != nil {
		return actor, err
	}
	if actor.Instructor, err = gyms.IsInstructor(ctx, gymID, userID); err != nil {
		return actor, err
	}

	return actor, nil
}

// timedBuilder feeds occupancy build latency into the metrics without the
// builder knowing about instrumentation.
type timedBuilder struct {
	b *occupancy.Builder
}

func (t timedBuilder) BuildDay(ctx context.Context, zoneID int, day time.Time, actorID int) (*occupancy.Map, error) {
	start := time.Now()
	m, err := t.b.BuildDay(ctx, zoneID, day, actorID)
	metrics.ObserveOccupancyBuild(time.Since(start).Seconds())
	return m, err
}

func (t timedBuilder) BuildWeek(ctx context.Context, zoneID int, w time.Time, actorID int) (*occupancy.Map, error) {
	start := time.Now()
	m, err := t.b.BuildWeek(ctx, zoneID, w, actorID)
	metrics.ObserveOccupancyBuild(time.Since(start).Seconds())
	return m, err
}
