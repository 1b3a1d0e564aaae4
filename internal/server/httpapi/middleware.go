package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dsmirnovs/clipvault/internal/common"
	"github.com/dsmirnovs/clipvault/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// userIDFrom returns the authenticated caller's identity ID placed in the
// context by authenticate.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// authenticate extracts the access token from the Authorization header
// (Bearer scheme) or the access-token cookie, verifies it, and injects the
// caller's identity ID into the request context. All verification failures
// collapse to a 401.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if c, err := r.Cookie(common.AccessTokenCookieName); err == nil {
				token = c.Value
			}
		}
		if token == "" {
			s.writeError(w, common.ErrorUnauthorized)
			return
		}

		claims, err := s.issuer.Verify(token, auth.KindAccess)
		if err != nil {
			s.logger.Debug(r.Context(), "access token rejected", "error", err.Error())
			s.writeError(w, common.ErrorUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
