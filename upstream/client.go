// Package upstream talks to the meal-ordering service's admin API: it logs in to
// obtain a session cookie and reads delivery records with it.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/jrsteele09/office-roster/internal/metrics"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://forkable.com"

	graphQLPath    = "/api/v2/graphql"
	deliveriesPath = "/api/v2/mc/admin/deliveries"

	// SessionCookieName is the upstream cookie carrying the admin session.
	SessionCookieName = "_easyorder_session"

	createSessionMutation = "mutation ($input: CreateSessionInput!) { createSession (input: $input) { errorAttributes user { id email } } }"

	opLogin      = "login"
	opDeliveries = "deliveries"

	maxErrorBodyBytes = 512
)

// HTTPDoer is the subset of *http.Client the client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs the two upstream operations. It never retries; a failed call
// is returned to the caller immediately.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// New creates a client for the service rooted at baseURL (e.g. "https://forkable.com").
func New(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates with the admin credentials and returns the session cookie
// in "name=value" form, ready to be sent back in a Cookie header.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	body := graphQLRequest{
		Query:     createSessionMutation,
		Variables: map[string]any{"input": creds},
	}

	resp, err := c.post(ctx, opLogin, graphQLPath, body, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", httpError(resp, "upstream login failed")
	}

	if rejected := rejectedAttributes(resp.Body); rejected != "" {
		return "", &apperrors.UpstreamAuthError{Err: fmt.Errorf("credentials rejected: %s", rejected)}
	}

	cookie, err := sessionCookie(resp)
	if err != nil {
		return "", err
	}
	log.Debug().Msg("Upstream login succeeded")
	return cookie, nil
}

// FetchDeliveries reads deliveries for the given clubs starting at from (YYYY-MM-DD).
// The payload is returned exactly as parsed.
func (c *Client) FetchDeliveries(ctx context.Context, token string, clubIDs []int, from string) (*Payload, error) {
	if clubIDs == nil {
		clubIDs = []int{}
	}
	headers := map[string]string{"Cookie": token}
	resp, err := c.post(ctx, opDeliveries, deliveriesPath, deliveriesRequest{ClubIDs: clubIDs, From: from}, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, httpError(resp, "upstream deliveries request failed")
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &apperrors.UpstreamProtocolError{Message: "failed to decode deliveries response", Err: err}
	}
	return &payload, nil
}

// post sends body as JSON and records the call. Transport failures are wrapped
// in UpstreamTransportError; the caller owns resp.Body.
func (c *Client) post(ctx context.Context, op, path string, body any, headers map[string]string) (*http.Response, error) {
	url := c.baseURL + path

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request body: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveUpstream(op, "transport", elapsed)
		log.Err(err).Str("operation", op).Str("url", url).Msg("Upstream request failed")
		return nil, &apperrors.UpstreamTransportError{Op: "upstream " + op, Err: err}
	}

	metrics.ObserveUpstream(op, fmt.Sprint(resp.StatusCode), elapsed)
	log.Debug().
		Str("operation", op).
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("Upstream response")
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}

func httpError(resp *http.Response, message string) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	log.Warn().
		Int("status", resp.StatusCode).
		Str("body", strings.TrimSpace(string(snippet))).
		Msg(message)
	return &apperrors.UpstreamHTTPError{StatusCode: resp.StatusCode, Message: message}
}

// rejectedAttributes returns the attributes the login mutation complained about
// when no user came back. An unreadable body is not an error; the cookie decides.
func rejectedAttributes(body io.Reader) string {
	var parsed createSessionResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return ""
	}
	session := parsed.Data.CreateSession
	if session == nil || session.User != nil {
		return ""
	}
	attrs := strings.TrimSpace(string(session.ErrorAttributes))
	switch attrs {
	case "", "null", "[]", "{}":
		return ""
	}
	return attrs
}
