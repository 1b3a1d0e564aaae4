// Package common defines shared constants and sentinel errors used across
// clipvault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorValidation         = errors.New("validation error")

	// Password-change errors.
	ErrorPasswordUnchanged = errors.New("new password must differ from the old one")
	ErrorWeakPassword      = errors.New("password is too weak")

	// Auth errors (structural, cryptographic, lifecycle). Revocation is a
	// store-level concern and surfaces as ErrorUnauthorized instead.
	ErrTokenMalformed = errors.New("malformed token")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")

	// Object-store errors.
	ErrorUploadFailed = errors.New("upload failed")
)
