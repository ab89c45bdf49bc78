package user

import "context"

type Repository interface {
	Create(ctx context.Context, username, email, passwordHash, role string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	ConfirmEmail(ctx context.Context, id int) error
}
