package gym

import (
	"context"
	"errors"

	"github.com/gedemagt/booking/internal/logger"
)

var ErrNotGymAdmin = errors.New("user is not an admin of this gym")

type Service interface {
	CreateGym(ctx context.Context, name, code string, ownerID int) (*Gym, error)
	GetGym(ctx context.Context, gymID int) (*Gym, error)
	// Join adds the user to the gym matching the join code.
	Join(ctx context.Context, code string, userID int) (*Gym, error)
	UpdateSettings(ctx context.Context, gymID, actorID int, actorRole string, req UpdateSettingsRequest) (*Gym, error)

	CreateZone(ctx context.Context, gymID, actorID int, actorRole string, req CreateZoneRequest) (*Zone, error)
	DeleteZone(ctx context.Context, zoneID, actorID int, actorRole string) error
	Zones(ctx context.Context, gymID int) ([]Zone, error)

	SetAdmin(ctx context.Context, gymID, actorID int, actorRole string, userID int, admin bool) error
	SetInstructor(ctx context.Context, gymID, actorID int, actorRole string, userID int, instructor bool) error
	IsMember(ctx context.Context, gymID, userID int) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateGym(ctx context.Context, name, code string, ownerID int) (*Gym, error) {
	g, err := s.repo.CreateGym(ctx, name, code)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, g.ID, ownerID); err != nil {
		return nil, err
	}
	if err := s.repo.SetAdmin(ctx, g.ID, ownerID, true); err != nil {
		return nil, err
	}

	logger.Info("gym created", "gym_id", g.ID, "name", g.Name, "owner", ownerID)
	return g, nil
}

func (s *service) GetGym(ctx context.Context, gymID int) (*Gym, error) {
	return s.repo.GetGymByID(ctx, gymID)
}

func (s *service) Join(ctx context.Context, code string, userID int) (*Gym, error) {
	g, err := s.repo.GetGymByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddMember(ctx, g.ID, userID); err != nil {
		return nil, err
	}

	logger.Info("user joined gym", "gym_id", g.ID, "user_id", userID)
	return g, nil
}

func (s *service) UpdateSettings(ctx context.Context, gymID, actorID int, actorRole string, req UpdateSettingsRequest) (*Gym, error) {
	if err := s.requireAdmin(ctx, gymID, actorID, actorRole); err != nil {
		return nil, err
	}
	return s.repo.UpdateSettings(ctx, gymID, req)
}

func (s *service) CreateZone(ctx context.Context, gymID, actorID int, actorRole string, req CreateZoneRequest) (*Zone, error) {
	if err := s.requireAdmin(ctx, gymID, actorID, actorRole); err != nil {
		return nil, err
	}
	return s.repo.CreateZone(ctx, gymID, req.Name, req.MaxPeople)
}

// DeleteZone cascades to the zone's bookings at the schema level.
func (s *service) DeleteZone(ctx context.Context, zoneID, actorID int, actorRole string) error {
	g, err := s.repo.GetGymForZone(ctx, zoneID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, g.ID, actorID, actorRole); err != nil {
		return err
	}
	return s.repo.DeleteZone(ctx, zoneID)
}

func (s *service) Zones(ctx context.Context, gymID int) ([]Zone, error) {
	if _, err := s.repo.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}
	return s.repo.GetZonesByGym(ctx, gymID)
}

func (s *service) SetAdmin(ctx context.Context, gymID, actorID int, actorRole string, userID int, admin bool) error {
	if err := s.requireAdmin(ctx, gymID, actorID, actorRole); err != nil {
		return err
	}
	return s.repo.SetAdmin(ctx, gymID, userID, admin)
}

func (s *service) SetInstructor(ctx context.Context, gymID, actorID int, actorRole string, userID int, instructor bool) error {
	if err := s.requireAdmin(ctx, gymID, actorID, actorRole); err != nil {
		return err
	}
	return s.repo.SetInstructor(ctx, gymID, userID, instructor)
}

func (s *service) IsMember(ctx context.Context, gymID, userID int) (bool, error) {
	return s.repo.IsMember(ctx, gymID, userID)
}

func (s *service) requireAdmin(ctx context.Context, gymID, actorID int, actorRole string) error {
	if actorRole == "ADMIN" {
		return nil
	}

	admin, err := s.repo.IsAdmin(ctx, gymID, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrNotGymAdmin
	}
	return nil
}
