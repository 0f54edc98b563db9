package roster

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/office-roster/internal/config"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/jrsteele09/office-roster/internal/metrics"
	"github.com/jrsteele09/office-roster/upstream"
	"github.com/jrsteele09/office-roster/upstream/sessioncache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SettingsSource supplies validated upstream settings for each request.
type SettingsSource interface {
	GetUpstreamSettings() (config.UpstreamSettings, error)
}

// UpstreamClient is the subset of *upstream.Client the service calls.
type UpstreamClient interface {
	Login(ctx context.Context, creds upstream.Credentials) (string, error)
	FetchDeliveries(ctx context.Context, token string, clubIDs []int, from string) (*upstream.Payload, error)
}

// TokenCache hands out the upstream session token.
type TokenCache interface {
	GetValidToken(ctx context.Context, login sessioncache.LoginFunc) (sessioncache.Token, error)
	Invalidate(ctx context.Context)
}

// Service builds the weekly roster from the upstream service.
type Service struct {
	settings SettingsSource
	client   UpstreamClient
	tokens   TokenCache
	nowTime  func() time.Time
}

// ServiceOption modifies a Service.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService creates a Service. All dependencies are required.
func NewService(settings SettingsSource, client UpstreamClient, tokens TokenCache, options ...ServiceOption) (*Service, error) {
	if settings == nil {
		return nil, errors.New("[NewService] settings source is required")
	}
	if client == nil {
		return nil, errors.New("[NewService] upstream client is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token cache is required")
	}

	s := &Service{
		settings: settings,
		client:   client,
		tokens:   tokens,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// WeeklyRoster fetches deliveries from the Monday of the displayed week onwards and
// aggregates them. Configuration problems are returned as ConfigurationError before
// any upstream call is made.
func (s *Service) WeeklyRoster(ctx context.Context) (RosterByDate, error) {
	settings, err := s.settings.GetUpstreamSettings()
	if err != nil {
		return nil, err
	}

	token, err := s.sessionToken(ctx, settings)
	if err != nil {
		return nil, err
	}

	from := ComputeDisplayedWeekDates(s.nowTime())[0]
	payload, err := s.client.FetchDeliveries(ctx, token, settings.ClubIDs, from)
	if err != nil {
		if !settings.UsesStaticCookie() && sessionRejected(err) {
			s.tokens.Invalidate(ctx)
		}
		return nil, errors.Wrap(err, "fetch deliveries")
	}

	pieces := Parse(payload)
	recordPieces(pieces)
	return Aggregate(pieces), nil
}

func (s *Service) sessionToken(ctx context.Context, settings config.UpstreamSettings) (string, error) {
	if settings.UsesStaticCookie() {
		return staticCookie(settings.SessionCookie), nil
	}

	creds := upstream.Credentials{Email: settings.Email, Password: settings.Password}
	token, err := s.tokens.GetValidToken(ctx, func(ctx context.Context) (string, error) {
		return s.client.Login(ctx, creds)
	})
	if err != nil {
		return "", err
	}
	return token.Value, nil
}

// staticCookie accepts either a bare cookie value or "name=value".
func staticCookie(cookie string) string {
	if strings.Contains(cookie, "=") {
		return cookie
	}
	return upstream.SessionCookieName + "=" + cookie
}

// sessionRejected reports whether upstream refused the cached session.
func sessionRejected(err error) bool {
	var httpErr *apperrors.UpstreamHTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}

func recordPieces(pieces []Piece) {
	counts := Summarise(pieces)
	for status, n := range counts {
		metrics.Pieces(status.String(), n)
	}

	dropped := len(pieces) - counts[PieceAccepted]
	if dropped > 0 {
		log.Debug().
			Int("unconfirmed", counts[PieceUnconfirmed]).
			Int("missing_date", counts[PieceMissingDate]).
			Int("missing_identity", counts[PieceMissingIdentity]).
			Int("malformed", counts[PieceMalformed]).
			Msg("Dropped upstream pieces during aggregation")
	}
}
