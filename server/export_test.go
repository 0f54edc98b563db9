package server

import "net/http"

const SessionCookieName = sessionCookieName

// SessionCookieForTest signs a session the same way the callback does.
func (s *Server) SessionCookieForTest(subject, email, name string) (*http.Cookie, error) {
	token, _, err := s.sessions.Issue(subject, email, name)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{Name: sessionCookieName, Value: token}, nil
}
