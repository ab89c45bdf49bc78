package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gedemagt/booking/internal/auth"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, username, email, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, username, email, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ConfirmEmail(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

const testSecret = "test-secret"

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "a@example.com").Return(false, nil)
	repo.On("UsernameExists", ctx, "alice").Return(false, nil)
	repo.On("Create", ctx, "alice", "a@example.com", mock.AnythingOfType("string"), "USER").
		Return(&User{ID: 1, Username: "alice", Email: "a@example.com", Role: "USER"}, nil)

	u, access, refresh, err := svc.Register(ctx, RegisterRequest{
		Username: "alice", Email: "a@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	claims, err := auth.ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "USER", claims.Role)

	repo.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "a@example.com").Return(true, nil)

	_, _, _, err := svc.Register(ctx, RegisterRequest{
		Username: "alice", Email: "a@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Create")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	repo.On("EmailExists", ctx, "a@example.com").Return(false, nil)
	repo.On("UsernameExists", ctx, "alice").Return(true, nil)

	_, _, _, err := svc.Register(ctx, RegisterRequest{
		Username: "alice", Email: "a@example.com", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLogin(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	repo.On("FindByEmail", ctx, "a@example.com").
		Return(&User{ID: 1, Email: "a@example.com", PasswordHash: hash, Role: "USER"}, nil)

	u, access, _, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.NotEmpty(t, access)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	repo.On("FindByEmail", ctx, "a@example.com").
		Return(&User{ID: 1, Email: "a@example.com", PasswordHash: hash}, nil)

	_, _, _, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "x@example.com").Return(nil, ErrUserNotFound)

	_, _, _, err := svc.Login(ctx, LoginRequest{Email: "x@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	_, refresh, err := auth.GenerateTokens(1, "a@example.com", "USER", testSecret)
	require.NoError(t, err)

	repo.On("FindByID", ctx, 1).Return(&User{ID: 1, Email: "a@example.com", Role: "USER"}, nil)

	access, u, err := svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	claims, err := auth.ValidateToken(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshWithAccessTokenRejected(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, testSecret)
	ctx := context.Background()

	access, _, err := auth.GenerateTokens(1, "a@example.com", "USER", testSecret)
	require.NoError(t, err)

	_, _, err = svc.RefreshToken(ctx, access)
	assert.ErrorIs(t, err, auth.ErrInvalidTokenType)
}
