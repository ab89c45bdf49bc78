package gym

import "context"

type Repository interface {
	CreateGym(ctx context.Context, name, code string) (*Gym, error)
	GetGymByID(ctx context.Context, id int) (*Gym, error)
	GetGymByCode(ctx context.Context, code string) (*Gym, error)
	GetGymForZone(ctx context.Context, zoneID int) (*Gym, error)
	UpdateSettings(ctx context.Context, gymID int, req UpdateSettingsRequest) (*Gym, error)

	CreateZone(ctx context.Context, gymID int, name string, maxPeople *int) (*Zone, error)
	GetZoneByID(ctx context.Context, id int) (*Zone, error)
	// LockZone takes a row-level lock on the zone, serializing concurrent
	// validate-then-commit sequences. Only meaningful inside a transaction.
	LockZone(ctx context.Context, id int) error
	GetZonesByGym(ctx context.Context, gymID int) ([]Zone, error)
	DeleteZone(ctx context.Context, id int) error

	AddMember(ctx context.Context, gymID, userID int) error
	IsMember(ctx context.Context, gymID, userID int) (bool, error)
	SetAdmin(ctx context.Context, gymID, userID int, admin bool) error
	IsAdmin(ctx context.Context, gymID, userID int) (bool, error)
	SetInstructor(ctx context.Context, gymID, userID int, instructor bool) error
	IsInstructor(ctx context.Context, gymID, userID int) (bool, error)
}
