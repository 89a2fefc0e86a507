package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lumo/internal/models"
)

func TestSyncUserCreatesAndIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	token := authToken(t, "clerk_abc")

	resp := doJSON(t, app, http.MethodPost, "/api/users/sync-user", token, map[string]string{
		"userId": "clerk_abc",
		"email":  "abc@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Resync with a different email must not overwrite the stored one.
	resp = doJSON(t, app, http.MethodPost, "/api/users/sync-user", token, map[string]string{
		"userId": "clerk_abc",
		"email":  "changed@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "clerk_abc", users[0].ClerkUserID)
	assert.Equal(t, "abc@example.com", users[0].Email)
}

func TestSyncUserMissingFields(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))
	token := authToken(t, "clerk_abc")

	resp := doJSON(t, app, http.MethodPost, "/api/users/sync-user", token, map[string]string{
		"userId": "clerk_abc",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSyncUserRequiresToken(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db, testConfig(t))

	resp := doJSON(t, app, http.MethodPost, "/api/users/sync-user", "", map[string]string{
		"userId": "clerk_abc",
		"email":  "abc@example.com",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
