package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"
	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookie holds the access token handed off on the auth callback.
const SessionCookie = "session"

// SessionAuthMiddleware requires a valid access token, read from a Bearer
// header or the session cookie, and injects the session into the context.
func SessionAuthMiddleware(verifier *service.SessionVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}
			if tokenString == "" {
				if c, err := r.Cookie(SessionCookie); err == nil {
					tokenString = c.Value
				}
			}
			if tokenString == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "missing access token")
				return
			}

			session, err := verifier.Verify(tokenString)
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken returns the Bearer token of r, "" when there is no
// Authorization header, and false when the header is malformed.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", true
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}
