package config

import "strings"

const (
	googleClientIDEnvVar     = "GOOGLE_CLIENT_ID"
	googleClientSecretEnvVar = "GOOGLE_CLIENT_SECRET"
	allowedDomainEnvVar      = "ALLOWED_EMAIL_DOMAIN"
	oidcIssuerEnvVar         = "OIDC_ISSUER"
)

// OAuthConfig describes the identity provider used to sign in to the dashboard.
type OAuthConfig interface {
	GetOIDCIssuer() string
	GetOIDCClientID() string
	GetOIDCClientSecret() string
	GetAllowedEmailDomain() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetOIDCIssuer() string {
	return GetEnv(oidcIssuerEnvVar, "https://accounts.google.com")
}

func (OAuth) GetOIDCClientID() string {
	return GetEnv(googleClientIDEnvVar, "")
}

func (OAuth) GetOIDCClientSecret() string {
	return GetEnv(googleClientSecretEnvVar, "")
}

// GetAllowedEmailDomain returns the domain without a leading "@". Empty means nobody may sign in.
func (OAuth) GetAllowedEmailDomain() string {
	return strings.TrimPrefix(strings.TrimSpace(GetEnv(allowedDomainEnvVar, "")), "@")
}

// EmailInDomain reports whether email belongs to domain. An empty domain allows nobody.
func EmailInDomain(email, domain string) bool {
	if domain == "" || email == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(domain))
}
