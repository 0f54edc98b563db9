package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error values for the roster service
var (
	// Access errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrDomainNotAllowed = errors.New("email domain not allowed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")

	// Auth flow errors
	ErrInvalidState = errors.New("invalid state parameter")
	ErrInvalidNonce = errors.New("invalid nonce")

	// General errors
	ErrNotFound = errors.New("not found")
)

// ConfigurationError reports a required setting that is missing or unusable.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Setting + " is missing"
}

// UpstreamAuthError reports a failed login against the upstream service.
// Err keeps the cause so an upstream status can still be passed through.
type UpstreamAuthError struct {
	Err error
}

func (e *UpstreamAuthError) Error() string {
	if e.Err == nil {
		return "upstream login failed"
	}
	return fmt.Sprintf("upstream login failed: %v", e.Err)
}

func (e *UpstreamAuthError) Unwrap() error {
	return e.Err
}

// UpstreamHTTPError is a non-2xx response from the upstream service.
type UpstreamHTTPError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamHTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d", e.Message, e.StatusCode)
}

// UpstreamTransportError wraps DNS, timeout and connection failures.
type UpstreamTransportError struct {
	Op  string
	Err error
}

func (e *UpstreamTransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamTransportError) Unwrap() error {
	return e.Err
}

// UpstreamProtocolError reports an upstream response of unexpected shape.
type UpstreamProtocolError struct {
	Message string
	Err     error
}

func (e *UpstreamProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamProtocolError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an error from the data pipeline to the status code the
// data endpoint responds with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}

	// An upstream status is passed through, including one wrapped by a failed login
	var httpErr *UpstreamHTTPError
	if errors.As(err, &httpErr) && validErrorStatus(httpErr.StatusCode) {
		return httpErr.StatusCode
	}
	return http.StatusInternalServerError
}

func validErrorStatus(code int) bool {
	return code >= 400 && code <= 599
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
