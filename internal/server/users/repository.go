// Package users holds the credential store and the session service built on
// top of it: login, logout, refresh-token rotation, password changes, and
// profile/asset updates.
package users

import (
	"context"

	"github.com/dsmirnovs/clipvault/internal/server/models"
)

// Repository is the credential store contract. The identity record is the
// only shared mutable resource; every mutation is a single-record update
// scoped to one identity, relying on the store's per-row atomicity.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByLogin resolves an identity by username or email. The username
	// match is case-insensitive against the canonical lowercase form.
	GetByLogin(ctx context.Context, identifier string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetRefreshTokenHash overwrites the stored refresh-token hash. An empty
	// hash clears it (logout/revocation).
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetAssetSlot(ctx context.Context, id, slot, url string) (*models.User, error)

	// UpdateProfile sets email and/or display name; empty arguments keep the
	// stored value.
	UpdateProfile(ctx context.Context, id, email, fullName string) (*models.User, error)
}
