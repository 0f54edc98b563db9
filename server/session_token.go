package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/pkg/errors"
)

const sessionIssuer = "office-roster"

// SessionClaims identify the signed-in dashboard user.
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// sessionSigner issues and verifies the HS256 session cookie. The cookie is the
// whole session; nothing is kept server side.
type sessionSigner struct {
	secret  []byte
	maxAge  time.Duration
	nowTime func() time.Time
}

func newSessionSigner(secret []byte, maxAge time.Duration, nowTime func() time.Time) *sessionSigner {
	return &sessionSigner{
		secret:  secret,
		maxAge:  maxAge,
		nowTime: nowTime,
	}
}

// Issue signs a session for the verified identity and returns it with its expiry.
func (s *sessionSigner) Issue(subject, email, name string) (string, time.Time, error) {
	now := s.nowTime()
	expiresAt := now.Add(s.maxAge)

	claims := SessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "failed to sign session token")
	}
	return signed, expiresAt, nil
}

// Parse verifies the signature, issuer and expiry of a session token.
func (s *sessionSigner) Parse(raw string) (*SessionClaims, error) {
	if raw == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.verificationKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowTime),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperrors.ErrSessionExpired
	}
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnauthorized, err.Error())
	}
	return claims, nil
}

func (s *sessionSigner) verificationKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
