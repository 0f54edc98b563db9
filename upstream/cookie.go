package upstream

import (
	"net/http"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
)

// sessionCookie extracts the admin session from the login response's Set-Cookie headers.
func sessionCookie(resp *http.Response) (string, error) {
	if len(resp.Header.Values("Set-Cookie")) == 0 {
		return "", &apperrors.UpstreamProtocolError{Message: "missing set-cookie header"}
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value != "" {
			return cookie.Name + "=" + cookie.Value, nil
		}
	}
	return "", &apperrors.UpstreamProtocolError{Message: "could not parse session cookie"}
}
