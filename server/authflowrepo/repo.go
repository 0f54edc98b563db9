// Package authflowrepo holds the short-lived state of sign-ins that have been sent
// to the identity provider and not yet returned.
package authflowrepo

import "time"

// AuthFlowState is what the callback needs to finish a sign-in started at /auth/google.
type AuthFlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, authState *AuthFlowState) error
	Get(state string) (*AuthFlowState, error)
	Delete(state string) error
}
