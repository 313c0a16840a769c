package db

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_GetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "test-email-" + uuid.New().String() + "@example.com"
	userID, err := db.CreateUser(ctx, "Test User Email", email, "555-0100", types.RoleCoordinator, "hash")
	require.NoError(t, err)
	defer func() { _ = db.DeleteUser(ctx, userID) }()

	user, err := db.GetUserByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, types.RoleCoordinator, user.Role)
	assert.Equal(t, "555-0100", user.Phone)
	assert.True(t, user.PasswordSet)

	// Should return nil, nil (matching GetUser pattern)
	user2, err := db.GetUserByEmail(ctx, "nonexistent-"+uuid.New().String()+"@example.com")
	require.NoError(t, err)
	assert.Nil(t, user2)

	user3, err := db.GetUserByEmail(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, user3)
}

func TestIntegration_DuplicateEmailIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	email := "test-dup-" + uuid.New().String() + "@example.com"
	userID, err := db.CreateUser(ctx, "First", email, "", types.RoleCandidate, "hash")
	require.NoError(t, err)
	defer func() { _ = db.DeleteUser(ctx, userID) }()

	_, err = db.CreateUser(ctx, "Second", strings.ToUpper(email), "", types.RoleCandidate, "hash")
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := db.CheckEmailExists(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIntegration_UpdatePassword(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	userID := createTestUser(t, db, types.RoleCandidate)
	before, err := db.GetUser(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, db.UpdatePassword(ctx, userID, "$2a$12$newhash"))
	after, err := db.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "$2a$12$newhash", after.PasswordHash)
	assert.True(t, after.PasswordSet)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))

	assert.ErrorIs(t, db.UpdatePassword(ctx, uuid.New(), "x"), ErrNotFound)
}
