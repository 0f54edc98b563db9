package config

import "time"

const sessionSecretEnvVar = "SESSION_SECRET"

type SecurityConfig interface {
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
	GetAuthFlowTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetSessionSecret is the HMAC key for the dashboard session cookie.
func (Security) GetSessionSecret() string {
	return GetEnv(sessionSecretEnvVar, "")
}

func (Security) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour)
}

// GetAuthFlowTimeout bounds the time between /auth/google and the IdP callback.
func (Security) GetAuthFlowTimeout() time.Duration {
	return 10 * time.Minute
}
