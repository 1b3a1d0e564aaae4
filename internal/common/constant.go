// Package common contains shared constants and sentinel errors used across
// clipvault components.
package common

// AccessTokenCookieName and RefreshTokenCookieName are the cookie names the
// HTTP boundary uses to carry the session token pair.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// Asset slot names on a user record. A slot holds at most one live object.
const (
	SlotAvatar     = "avatar"
	SlotCoverImage = "coverImage"
)
