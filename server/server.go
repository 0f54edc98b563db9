package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/office-roster/internal/config"
	"github.com/jrsteele09/office-roster/roster"
	"github.com/jrsteele09/office-roster/server/authflowrepo"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

type OidcConfig struct {
	OidcProvider *oidc.Provider
	OAuth2Config *oauth2.Config
	OidcVerifier *oidc.IDTokenVerifier
}

// RosterSource produces the weekly roster served by the data endpoint and the dashboard.
type RosterSource interface {
	WeeklyRoster(ctx context.Context) (roster.RosterByDate, error)
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	roster    RosterSource
	authState authflowrepo.Repo
	sessions  *sessionSigner
	nowTime   func() time.Time

	oidcConfig *OidcConfig
	oidcLock   sync.Mutex
}

// ServerOption modifies a Server.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithOidcConfig skips provider discovery and uses the supplied configuration.
func WithOidcConfig(oidcConfig OidcConfig) ServerOption {
	return func(s *Server) {
		s.oidcConfig = &oidcConfig
	}
}

func New(config config.Config, rosterSource RosterSource, authStateRepo authflowrepo.Repo, options ...ServerOption) (*Server, error) {
	if rosterSource == nil {
		return nil, fmt.Errorf("[Server New] roster source is required")
	}
	if authStateRepo == nil {
		return nil, fmt.Errorf("[Server New] auth state repo is required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		roster:    rosterSource,
		authState: authStateRepo,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	secret := config.GetSessionSecret()
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET is not set, using a random key; sessions will not survive a restart")
		secret = generateRandomString(32)
	}
	s.sessions = newSessionSigner([]byte(secret), config.GetMaxSessionAge(), func() time.Time { return s.nowTime() })

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colourMethod(method), path)
}

// getOidcConfig discovers the identity provider on first use and caches the result.
func (s *Server) getOidcConfig(ctx context.Context) (OidcConfig, error) {
	s.oidcLock.Lock()
	defer s.oidcLock.Unlock()

	if s.oidcConfig != nil {
		return *s.oidcConfig, nil
	}

	clientID := s.config.GetOIDCClientID()
	if clientID == "" {
		return OidcConfig{}, fmt.Errorf("GOOGLE_CLIENT_ID is missing")
	}

	provider, err := oidc.NewProvider(ctx, s.config.GetOIDCIssuer())
	if err != nil {
		return OidcConfig{}, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oidcConfig := OidcConfig{
		OidcProvider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: s.config.GetOIDCClientSecret(),
			Endpoint:     provider.Endpoint(),
			RedirectURL:  s.config.GetBaseURL() + RouteCallback,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		OidcVerifier: provider.Verifier(&oidc.Config{
			ClientID: clientID,
		}),
	}
	s.oidcConfig = &oidcConfig

	return oidcConfig, nil
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
