package server

import (
	"html/template"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/office-roster/server/authflowrepo"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"

	stateLength    = 32
	nonceLength    = 32
	verifierLength = 48
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName   string
	Error     string
	ReturnURL string
}

// LoginPageUIHandler displays the login page (GET /login). Users who are
// already signed in go straight to the dashboard.
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := safeReturnURL(r.URL.Query().Get("return_to"))

		if _, err := s.currentSession(r); err == nil {
			http.Redirect(w, r, returnURL, http.StatusSeeOther)
			return
		}

		s.renderLogin(w, r, loginTmpl, http.StatusOK, LoginPageData{
			AppName:   s.config.GetAppName(),
			Error:     r.URL.Query().Get("error"),
			ReturnURL: returnURL,
		})
	}
}

// GoogleLoginHandler starts the authorization code flow with state, nonce and PKCE (GET /auth/google)
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		oidcConfig, err := s.getOidcConfig(r.Context())
		if err != nil {
			logger.Err(err).Msg("Failed to get OIDC config")
			redirectWithError(w, r, RouteLogin, "Sign-in is not available right now")
			return
		}

		state := generateRandomString(stateLength)
		nonce := generateRandomString(nonceLength)
		codeVerifier := generateRandomString(verifierLength)

		err = s.authState.Upsert(state, &authflowrepo.AuthFlowState{
			CodeVerifier: codeVerifier,
			Nonce:        nonce,
			ReturnURL:    safeReturnURL(r.URL.Query().Get("return_to")),
			CreatedAt:    s.nowTime(),
		})
		if err != nil {
			logger.Err(err).Msg("Failed to store auth flow state")
			redirectWithError(w, r, RouteLogin, "Sign-in is not available right now")
			return
		}

		authURL := oidcConfig.OAuth2Config.AuthCodeURL(state,
			oidc.Nonce(nonce),
			oauth2.SetAuthURLParam("code_challenge", generateCodeChallenge(codeVerifier)),
			oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// LogoutHandler clears the session cookie and returns to the login page (GET /auth/logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if claims, err := s.currentSession(r); err == nil {
			zerolog.Ctx(r.Context()).Info().Str("email", claims.Email).Msg("User signed out")
		}
		s.ClearSessionCookie(w, r)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data LoginPageData) {
	if data.AppName == "" {
		data.AppName = s.config.GetAppName()
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render login template")
	}
}

func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}
