package config

import (
	"strconv"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
)

const (
	forkableBaseURLEnvVar       = "FORKABLE_BASE_URL"
	forkableEmailEnvVar         = "FORKABLE_ADMIN_EMAIL"
	forkablePasswordEnvVar      = "FORKABLE_ADMIN_PASSWORD"
	forkableSessionCookieEnvVar = "FORKABLE_SESSION_COOKIE"
	forkableClubIDsEnvVar       = "FORKABLE_CLUB_IDS"
	upstreamTimeoutEnvVar       = "UPSTREAM_TIMEOUT"
	upstreamSessionTTLEnvVar    = "UPSTREAM_SESSION_TTL"
)

// UpstreamConfig describes the meal-ordering service the roster is read from.
type UpstreamConfig interface {
	GetUpstreamBaseURL() string
	GetUpstreamTimeout() time.Duration
	GetUpstreamSessionTTL() time.Duration
	GetUpstreamSettings() (UpstreamSettings, error)
}

// UpstreamSettings are the values the data endpoint needs on every request.
// Either Email/Password or SessionCookie is set.
type UpstreamSettings struct {
	Email         string
	Password      string
	SessionCookie string
	ClubIDs       []int
}

// UsesStaticCookie reports whether a pre-obtained session cookie replaces login.
func (s UpstreamSettings) UsesStaticCookie() bool {
	return s.SessionCookie != ""
}

type Upstream struct{}

var _ UpstreamConfig = Upstream{}

func (Upstream) GetUpstreamBaseURL() string {
	return strings.TrimSuffix(GetEnv(forkableBaseURLEnvVar, "https://forkable.com"), "/")
}

func (Upstream) GetUpstreamTimeout() time.Duration {
	return GetEnvDuration(upstreamTimeoutEnvVar, 30*time.Second)
}

// GetUpstreamSessionTTL is how long a login cookie is reused before logging in again.
func (Upstream) GetUpstreamSessionTTL() time.Duration {
	return GetEnvDuration(upstreamSessionTTLEnvVar, 30*24*time.Hour)
}

// GetUpstreamSettings reads and validates the upstream settings. It is called per
// request so a missing value surfaces as a ConfigurationError rather than a crash.
func (Upstream) GetUpstreamSettings() (UpstreamSettings, error) {
	rawClubIDs := GetEnv(forkableClubIDsEnvVar, "")
	if strings.TrimSpace(rawClubIDs) == "" {
		return UpstreamSettings{}, &apperrors.ConfigurationError{Setting: forkableClubIDsEnvVar}
	}
	clubIDs := ParseClubIDs(rawClubIDs)
	if len(clubIDs) == 0 {
		return UpstreamSettings{}, &apperrors.ConfigurationError{
			Setting: forkableClubIDsEnvVar,
			Message: forkableClubIDsEnvVar + " contains no valid club ids",
		}
	}

	settings := UpstreamSettings{
		SessionCookie: strings.TrimSpace(GetEnv(forkableSessionCookieEnvVar, "")),
		Email:         GetEnv(forkableEmailEnvVar, ""),
		Password:      GetEnv(forkablePasswordEnvVar, ""),
		ClubIDs:       clubIDs,
	}
	if settings.UsesStaticCookie() {
		return settings, nil
	}
	if settings.Email == "" || settings.Password == "" {
		return UpstreamSettings{}, &apperrors.ConfigurationError{
			Setting: forkableEmailEnvVar,
			Message: forkableEmailEnvVar + " and " + forkablePasswordEnvVar + " must be set",
		}
	}
	return settings, nil
}

// ParseClubIDs splits a comma-separated list, dropping entries that are not integers.
func ParseClubIDs(raw string) []int {
	ids := make([]int, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
