package server

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/office-roster/internal/config"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// idTokenClaims are the identity provider claims the dashboard relies on
type idTokenClaims struct {
	Nonce         string `json:"nonce"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
}

// OAuthCallbackHandler completes the sign-in (GET /callback): it exchanges the code,
// verifies the ID token and nonce, enforces the allowed email domain and sets the
// session cookie.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		state := r.FormValue("state")
		code := r.FormValue("code")

		if errorParam := r.FormValue("error"); errorParam != "" {
			logger.Warn().Str("error", errorParam).Str("description", r.FormValue("error_description")).Msg("Identity provider returned an error")
			redirectWithError(w, r, RouteLogin, "Sign-in was cancelled or failed")
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		authState, err := s.authState.Get(state)
		if err != nil || authState == nil {
			logger.Warn().Err(apperrors.ErrInvalidState).Msg("Callback with unknown or expired state")
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// State is single use
		if err := s.authState.Delete(state); err != nil {
			logger.Err(err).Msg("Failed to delete auth flow state")
		}

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			logger.Err(err).Msg("Failed to get OIDC config")
			http.Error(w, "Sign-in is not available right now", http.StatusInternalServerError)
			return
		}

		oauth2Token, err := oidcConfig.OAuth2Config.Exchange(
			r.Context(),
			code,
			oauth2.SetAuthURLParam("code_verifier", authState.CodeVerifier),
		)
		if err != nil {
			logger.Err(err).Msg("Token exchange failed")
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			return
		}

		rawIDToken, ok := oauth2Token.Extra("id_token").(string)
		if !ok {
			http.Error(w, "No ID token in response", http.StatusBadGateway)
			return
		}

		idToken, err := s.idTokenVerifier(oidcConfig).Verify(r.Context(), rawIDToken)
		if err != nil {
			logger.Err(err).Msg("ID token verification failed")
			http.Error(w, "ID token verification failed", http.StatusUnauthorized)
			return
		}

		var claims idTokenClaims
		if err := idToken.Claims(&claims); err != nil {
			http.Error(w, "Failed to extract claims", http.StatusBadGateway)
			return
		}

		// Validate nonce to prevent replay attacks
		if claims.Nonce != authState.Nonce {
			logger.Warn().Err(apperrors.ErrInvalidNonce).Str("email", claims.Email).Msg("ID token nonce mismatch")
			http.Error(w, "Invalid nonce", http.StatusUnauthorized)
			return
		}

		if claims.EmailVerified != nil && !*claims.EmailVerified {
			logger.Warn().Str("email", claims.Email).Msg("Refused sign-in with unverified email")
			s.renderLogin(w, r, loginTmpl, http.StatusForbidden, LoginPageData{Error: "Your email address is not verified"})
			return
		}

		if !config.EmailInDomain(claims.Email, s.config.GetAllowedEmailDomain()) {
			logger.Warn().Str("email", claims.Email).Msg("Refused sign-in from outside the allowed domain")
			s.renderLogin(w, r, loginTmpl, http.StatusForbidden, LoginPageData{Error: "This account is not allowed to access the dashboard"})
			return
		}

		sessionToken, expiresAt, err := s.sessions.Issue(claims.Sub, claims.Email, claims.Name)
		if err != nil {
			logger.Err(err).Msg("Failed to issue session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		s.SetSessionCookie(w, r, sessionToken, cookieMaxAge(expiresAt, s.nowTime()))

		logger.Info().Str("email", claims.Email).Msg("User signed in")
		http.Redirect(w, r, safeReturnURL(authState.ReturnURL), http.StatusSeeOther)
	}
}

func (s *Server) idTokenVerifier(oidcConfig OidcConfig) *oidc.IDTokenVerifier {
	if oidcConfig.OidcVerifier != nil {
		return oidcConfig.OidcVerifier
	}
	return oidcConfig.OidcProvider.Verifier(&oidc.Config{
		ClientID: oidcConfig.OAuth2Config.ClientID,
	})
}
