package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
	"github.com/example/lumo/internal/services"
)

func TestEnsureUser(t *testing.T) {
	db := openTestDB(t)

	created, err := services.EnsureUser(db, "clerk_1", "one@example.com")
	require.NoError(t, err)
	assert.Equal(t, "clerk_1", created.ClerkUserID)
	assert.Equal(t, "one@example.com", created.Email)

	// Resync returns the same record; the email is never updated.
	again, err := services.EnsureUser(db, "clerk_1", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "one@example.com", again.Email)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureUserMissingIdentity(t *testing.T) {
	db := openTestDB(t)

	_, err := services.EnsureUser(db, "", "one@example.com")
	assert.ErrorIs(t, err, services.ErrMissingIdentity)

	_, err = services.EnsureUser(db, "clerk_1", "  ")
	assert.ErrorIs(t, err, services.ErrMissingIdentity)
}

func TestResolveUser(t *testing.T) {
	db := openTestDB(t)

	_, err := services.ResolveUser(db, "clerk_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	created, err := services.EnsureUser(db, "clerk_1", "one@example.com")
	require.NoError(t, err)

	resolved, err := services.ResolveUser(db, "clerk_1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, resolved.ID)
}
