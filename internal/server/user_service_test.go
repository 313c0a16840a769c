package server

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/ats/atstest"
	"github.com/jonathan/hiring-tracker/internal/config"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(t *testing.T) (*UserService, *atstest.Store) {
	t.Helper()
	store := atstest.NewStore()
	return NewUserService(store, &config.PasswordConfig{BcryptCost: bcrypt.MinCost}), store
}

func TestUserService_Register(t *testing.T) {
	svc, store := newTestUserService(t)
	ctx := t.Context()

	user, err := svc.Register(ctx, &types.CreateUserRequest{
		Name: " Cara Candidate ", Email: "Cara@Example.com", Password: anyPassword, Phone: "+44 20 7946 0000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Cara Candidate", user.Name)
	assert.Equal(t, "cara@example.com", user.Email)
	assert.Equal(t, types.RoleCandidate, user.Role)
	assert.True(t, user.PasswordSet)

	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, anyPassword, stored.PasswordHash)

	_, err = svc.Register(ctx, &types.CreateUserRequest{Name: "Again", Email: "CARA@example.com", Password: anyPassword})
	var taken *ErrEmailAlreadyExists
	assert.True(t, errors.As(err, &taken))
}

func TestUserService_CreateStaff(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.CreateStaff(t.Context(), &types.CreateStaffRequest{
		Name: "Cole", Email: "cole@example.com", Password: anyPassword, Role: "Coordinator",
	})
	require.NoError(t, err)
	assert.Equal(t, types.RoleCoordinator, user.Role)

	_, err = svc.CreateStaff(t.Context(), &types.CreateStaffRequest{
		Name: "X", Email: "x@example.com", Password: anyPassword, Role: "owner",
	})
	assert.Error(t, err)
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := t.Context()
	registered, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Cara", Email: "cara@example.com", Password: anyPassword})
	require.NoError(t, err)

	user, err := svc.Login(ctx, &types.LoginRequest{Email: " CARA@example.com", Password: anyPassword})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "cara@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", anyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &types.LoginRequest{Email: tt.email, Password: tt.password})
			var invalid *ErrInvalidCredentials
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestUserService_UpdatePassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := t.Context()
	user, err := svc.Register(ctx, &types.CreateUserRequest{Name: "Cara", Email: "cara@example.com", Password: anyPassword})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "not-my-password", "new-password-123")
	var mismatch *ErrPasswordMismatch
	assert.True(t, errors.As(err, &mismatch))

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, anyPassword, "new-password-123"))
	_, err = svc.Login(ctx, &types.LoginRequest{Email: "cara@example.com", Password: "new-password-123"})
	assert.NoError(t, err)

	err = svc.UpdatePassword(ctx, uuid.New(), anyPassword, "whatever-123")
	var notFound *ErrUserNotFound
	assert.True(t, errors.As(err, &notFound))
}

func TestConvertDBUserToTypesUser_Nil(t *testing.T) {
	assert.Nil(t, convertDBUserToTypesUser(nil))
}
