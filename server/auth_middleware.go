package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/office-roster/internal/config"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyClaims stores the verified session claims
	ContextKeyClaims ContextKey = "claims"
)

// SessionFromContext returns the claims injected by the session middleware.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(ContextKeyClaims).(*SessionClaims)
	return claims, ok && claims != nil
}

// currentSession verifies the session cookie and re-checks the allowed domain,
// so narrowing ALLOWED_EMAIL_DOMAIN takes effect for existing sessions.
func (s *Server) currentSession(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, apperrors.ErrSessionNotFound
	}

	claims, err := s.sessions.Parse(cookie.Value)
	if err != nil {
		return nil, err
	}
	if !config.EmailInDomain(claims.Email, s.config.GetAllowedEmailDomain()) {
		return nil, apperrors.ErrDomainNotAllowed
	}
	return claims, nil
}

// RequireSessionAuth is middleware for server-rendered pages. Requests without a
// valid session are redirected to the login page.
func (s *Server) RequireSessionAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.currentSession(r)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("No valid session, redirecting to login")
				if !apperrors.Is(err, apperrors.ErrSessionNotFound) {
					s.ClearSessionCookie(w, r)
				}
				loginURL := RouteLogin
				if r.URL.Path != RouteIndex {
					loginURL += "?return_to=" + url.QueryEscape(r.URL.RequestURI())
				}
				http.Redirect(w, r, loginURL, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAPISession is middleware for JSON routes. Requests without a valid
// session get 401 {"error":"Unauthorized"}.
func (s *Server) RequireAPISession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.currentSession(r)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected API request without a valid session")
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}
