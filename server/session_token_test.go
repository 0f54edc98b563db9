package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestSessionSigner(t *testing.T) {
	now := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	signer := newSessionSigner([]byte("test-secret"), time.Hour, clock)

	t.Run("issue and parse", func(t *testing.T) {
		raw, expiresAt, err := signer.Issue("123", "jane@example.com", "Jane")
		require.NoError(t, err)
		require.Equal(t, now.Add(time.Hour), expiresAt)

		claims, err := signer.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, "123", claims.Subject)
		require.Equal(t, "jane@example.com", claims.Email)
		require.Equal(t, "Jane", claims.Name)
		require.Equal(t, sessionIssuer, claims.Issuer)
		require.NotEmpty(t, claims.ID)
	})

	t.Run("expired", func(t *testing.T) {
		raw, _, err := signer.Issue("123", "jane@example.com", "Jane")
		require.NoError(t, err)

		later := newSessionSigner([]byte("test-secret"), time.Hour, func() time.Time { return now.Add(2 * time.Hour) })
		_, err = later.Parse(raw)
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		raw, _, err := newSessionSigner([]byte("other"), time.Hour, clock).Issue("123", "jane@example.com", "Jane")
		require.NoError(t, err)

		_, err = signer.Parse(raw)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("unsigned token", func(t *testing.T) {
		claims := SessionClaims{
			Email: "mallory@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    sessionIssuer,
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = signer.Parse(raw)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := SessionClaims{
			Email: "jane@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = signer.Parse(raw)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := signer.Parse("")
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestSafeReturnURL(t *testing.T) {
	require.Equal(t, "/", safeReturnURL(""))
	require.Equal(t, "/", safeReturnURL("https://evil.example.com"))
	require.Equal(t, "/", safeReturnURL("//evil.example.com"))
	require.Equal(t, "/", safeReturnURL("/\\evil.example.com"))
	require.Equal(t, "/api/data", safeReturnURL("/api/data"))
}

func TestGenerateCodeChallenge(t *testing.T) {
	// RFC 7636 appendix B
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", generateCodeChallenge("dBjftJeZ4CVP-mB92K27uhbUdU-p9wk5VS6u8LnwYrI"))
}
