// Package auth implements the token issuer: creation and verification of the
// signed access/refresh token pair bound to a user identity.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dsmirnovs/clipvault/internal/common"
)

// TokenKind distinguishes the two token flavors. Each kind is signed with its
// own secret, so an access token can never pass refresh verification.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims carries the identity claim plus the token kind. The jti registered
// claim is a fresh uuid per token, so two tokens issued for the same user in
// the same second still differ.
type Claims struct {
	jwt.RegisteredClaims
	UserID string    `json:"uid"`
	Kind   TokenKind `json:"kind"`
}

// Issuer signs and verifies token pairs. Secrets and lifetimes come from the
// configuration; the issuer itself holds no mutable state and is safe for
// concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccess creates a short-lived access token for userID. Access tokens
// are stateless and never persisted server-side.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	return i.issue(userID, KindAccess, i.accessTTL, i.accessSecret)
}

// IssueRefresh creates a longer-lived refresh token for userID. Only its
// hash is persisted, by the caller.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	return i.issue(userID, KindRefresh, i.refreshTTL, i.refreshSecret)
}

func (i *Issuer) issue(userID string, kind TokenKind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	})

	return token.SignedString(secret)
}

// Verify parses the token, checks its signature and expiry, and requires the
// expected kind. The returned errors are cryptographic/structural only:
//   - common.ErrTokenMalformed for structurally broken input,
//   - common.ErrTokenExpired for an expired token,
//   - common.ErrInvalidToken for a bad signature or wrong kind.
//
// Whether the token was revoked is a store-level question the caller answers
// separately.
func (i *Issuer) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := i.accessSecret
	if kind == KindRefresh {
		secret = i.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, common.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrInvalidToken
		}
	}

	if !token.Valid || claims.Kind != kind {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
