// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is the persisted identity record. Username is stored in canonical
// lowercase form; username and email are globally unique.
//
// PasswordHash and RefreshTokenHash are secret material: they never appear
// in API responses (see View). RefreshTokenHash is empty when no refresh
// token is live for this identity, and otherwise corresponds to exactly one
// currently-valid refresh token.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	// Asset slots. Each holds the delivery URL of at most one live object;
	// the storage key is derivable from the URL.
	Avatar     string
	CoverImage string

	RefreshTokenHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserView is the redacted projection returned to clients.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullname"`
	Avatar     string    `json:"avatar,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// View strips secret material from the record.
func (u *User) View() UserView {
	return UserView{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
