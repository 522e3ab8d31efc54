package service

import (
	"testing"

	"github.com/sitecms/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceAuthenticate(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	user, created, err := svc.Upsert(ctx, "admin", "Admin@Example.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, db.RoleAdmin, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	byName, err := svc.Authenticate(ctx, "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := svc.Authenticate(ctx, "ADMIN@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = svc.Authenticate(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "ghost", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Authenticate(ctx, "admin", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.FindActive(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUserServiceUpsertResetsExisting(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, _, err := svc.Upsert(ctx, "editor", "", "first-pass", db.RoleEditor)
	require.NoError(t, err)

	user, created, err := svc.Upsert(ctx, "editor", "ed@example.com", "second-pass", db.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, created)

	reloaded, err := svc.FindActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, db.RoleAdmin, reloaded.Role)
	assert.Equal(t, "ed@example.com", reloaded.Email)

	_, err = svc.Authenticate(ctx, "editor", "second-pass")
	assert.NoError(t, err)

	_, _, err = svc.Upsert(ctx, "x", "", "short", "")
	_, ok := AsValidationError(err)
	assert.True(t, ok)

	_, _, err = svc.Upsert(ctx, "y", "", "long-enough", "owner")
	assert.ErrorIs(t, err, ErrRoleInvalid)
}
