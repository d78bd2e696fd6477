package service

import (
	"fmt"
	"time"

	"github.com/YannWeb3/Coach-Setter-Dashboard/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================
// Session tokens
// ============================================================

// SessionClaims are the claims of a Supabase-style access token.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SessionVerifier validates HS256 access tokens.
type SessionVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewSessionVerifier creates a verifier for tokens signed with secret.
func NewSessionVerifier(secret string) *SessionVerifier {
	return &SessionVerifier{secret: []byte(secret), now: time.Now}
}

// Enabled reports whether a signing secret is configured.
func (v *SessionVerifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify parses tokenString and returns the session it carries.
func (v *SessionVerifier) Verify(tokenString string) (*domain.Session, error) {
	if !v.Enabled() {
		return nil, &domain.ErrUnauthorized{Message: "session verification is not configured"}
	}
	if tokenString == "" {
		return nil, &domain.ErrUnauthorized{Message: "missing access token"}
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid access token"}
	}
	if claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "access token has no subject"}
	}

	return &domain.Session{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Sign issues a token for subject valid for ttl. Used by the devtools
// endpoint and tests.
func (v *SessionVerifier) Sign(subject, email, role string, ttl time.Duration) (string, error) {
	now := v.now()
	claims := SessionClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
