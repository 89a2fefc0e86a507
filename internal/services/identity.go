package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/lumo/internal/models"
)

// ErrMissingIdentity is returned when the external user ID or email is absent.
var ErrMissingIdentity = errors.New("external user id and email are required")

// EnsureUser maps an external authenticated identity to an internal user
// record, lazily creating it on first sync. Safe to call on every request;
// the stored email is never updated on resync.
func EnsureUser(db *gorm.DB, externalID, email string) (*models.User, error) {
	externalID = strings.TrimSpace(externalID)
	email = strings.TrimSpace(email)
	if externalID == "" || email == "" {
		return nil, ErrMissingIdentity
	}

	var user models.User
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&user, "clerk_user_id = ?", externalID).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user = models.User{ClerkUserID: externalID, Email: email}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ResolveUser looks up the internal user for an external identity. Returns
// gorm.ErrRecordNotFound when the identity has never been synced.
func ResolveUser(db *gorm.DB, externalID string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "clerk_user_id = ?", externalID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
