package upstream_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/jrsteele09/office-roster/upstream"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@example.com"
	testPassword = "password123"
	testCookie   = "_easyorder_session=abc123"
)

func TestClient_Login(t *testing.T) {
	t.Run("returns session cookie", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v2/graphql", r.URL.Path)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body struct {
				Query     string `json:"query"`
				Variables struct {
					Input struct {
						Email    string `json:"email"`
						Password string `json:"password"`
					} `json:"input"`
				} `json:"variables"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Contains(t, body.Query, "createSession")
			require.Equal(t, testEmail, body.Variables.Input.Email)
			require.Equal(t, testPassword, body.Variables.Input.Password)

			http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "x"})
			http.SetCookie(w, &http.Cookie{Name: "_easyorder_session", Value: "abc123", Path: "/", HttpOnly: true})
			_, _ = w.Write([]byte(`{"data":{"createSession":{"errorAttributes":[],"user":{"id":1,"email":"admin@example.com"}}}}`))
		}))
		defer server.Close()

		token, err := upstream.New(server.URL).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: testPassword})
		require.NoError(t, err)
		require.Equal(t, testCookie, token)
	})

	t.Run("non-2xx is an http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: testPassword})
		var httpErr *apperrors.UpstreamHTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	})

	t.Run("missing set-cookie header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: testPassword})
		var protoErr *apperrors.UpstreamProtocolError
		require.ErrorAs(t, err, &protoErr)
		require.Equal(t, "missing set-cookie header", err.Error())
	})

	t.Run("set-cookie without session cookie", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "other", Value: "x"})
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: testPassword})
		var protoErr *apperrors.UpstreamProtocolError
		require.ErrorAs(t, err, &protoErr)
		require.Equal(t, "could not parse session cookie", err.Error())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.SetCookie(w, &http.Cookie{Name: "_easyorder_session", Value: "anonymous"})
			_, _ = w.Write([]byte(`{"data":{"createSession":{"errorAttributes":["password"],"user":null}}}`))
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: "wrong"})
		var authErr *apperrors.UpstreamAuthError
		require.ErrorAs(t, err, &authErr)
		require.Contains(t, err.Error(), "password")
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := upstream.New(url).Login(context.Background(), upstream.Credentials{Email: testEmail, Password: testPassword})
		var transportErr *apperrors.UpstreamTransportError
		require.ErrorAs(t, err, &transportErr)
	})
}

func TestClient_FetchDeliveries(t *testing.T) {
	t.Run("sends clubs, date and cookie", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/v2/mc/admin/deliveries", r.URL.Path)
			require.Equal(t, testCookie, r.Header.Get("Cookie"))

			var body struct {
				ClubIDs []int  `json:"clubIds"`
				From    string `json:"from"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, []int{12, 34}, body.ClubIDs)
			require.Equal(t, "2025-06-09", body.From)

			_, _ = w.Write([]byte(`{"deliveries":[{"orders":[{"pieces":[
				{"date":"2025-06-09","userId":7,"user":{"email":"jane@example.com"},"userFullName":"Jane Doe","isConfirmed":true},
				{"date":"2025-06-10","user":{},"isConfirmed":false}
			]}]}]}`))
		}))
		defer server.Close()

		payload, err := upstream.New(server.URL).FetchDeliveries(context.Background(), testCookie, []int{12, 34}, "2025-06-09")
		require.NoError(t, err)
		require.Len(t, payload.Deliveries, 1)
		pieces := payload.Deliveries[0].Orders[0].Pieces
		require.Len(t, pieces, 2)
		require.Equal(t, "2025-06-09", *pieces[0].Date)
		require.Equal(t, "7", pieces[0].UserID.String())
		require.Equal(t, "jane@example.com", *pieces[0].User.Email)
		require.True(t, *pieces[0].IsConfirmed)
		require.Nil(t, pieces[1].UserID)
		require.Nil(t, pieces[1].User.Email)
		require.Nil(t, pieces[1].UserFullName)
	})

	t.Run("upstream status is kept", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden"}`))
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).FetchDeliveries(context.Background(), testCookie, []int{1}, "2025-06-09")
		var httpErr *apperrors.UpstreamHTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, http.StatusForbidden, httpErr.StatusCode)
		require.Equal(t, http.StatusForbidden, apperrors.HTTPStatus(err))
	})

	t.Run("malformed body is a protocol error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"deliveries": "nope"}`))
		}))
		defer server.Close()

		_, err := upstream.New(server.URL).FetchDeliveries(context.Background(), testCookie, []int{1}, "2025-06-09")
		var protoErr *apperrors.UpstreamProtocolError
		require.ErrorAs(t, err, &protoErr)
	})

	t.Run("bad fields spoil only their piece", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"deliveries":[
				{"orders":[{"pieces":[
					{"date":"2025-06-09","userId":1,"userFullName":"Ann","isConfirmed":true},
					{"date":"2025-06-09","userId":"abc","userFullName":"Bad Id","isConfirmed":true},
					{"date":"2025-06-09","userId":3,"userFullName":"Bad Flag","isConfirmed":"yes"},
					{"date":"2025-06-09","userId":4,"user":"nobody","isConfirmed":true},
					"not a piece"
				]}, {"pieces":"nope"}, 7]},
				{"orders":{"not":"a list"}},
				null
			]}`))
		}))
		defer server.Close()

		payload, err := upstream.New(server.URL).FetchDeliveries(context.Background(), testCookie, []int{1}, "2025-06-09")
		require.NoError(t, err)
		require.Len(t, payload.Deliveries, 3)

		orders := payload.Deliveries[0].Orders
		require.Len(t, orders, 3)
		require.Empty(t, orders[1].Pieces)
		require.Empty(t, orders[2].Pieces)
		require.Empty(t, payload.Deliveries[1].Orders)

		pieces := orders[0].Pieces
		require.Len(t, pieces, 5)
		require.False(t, pieces[0].Malformed)
		require.Equal(t, "Ann", *pieces[0].UserFullName)
		for _, piece := range pieces[1:] {
			require.True(t, piece.Malformed)
		}
		require.Equal(t, "Bad Flag", *pieces[2].UserFullName)
		require.Nil(t, pieces[2].IsConfirmed)
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		client := upstream.New(server.URL, upstream.WithTimeout(20*time.Millisecond))
		_, err := client.FetchDeliveries(context.Background(), testCookie, []int{1}, "2025-06-09")
		var transportErr *apperrors.UpstreamTransportError
		require.ErrorAs(t, err, &transportErr)
		require.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	})

	t.Run("nil club ids are sent as an empty list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]json.RawMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.JSONEq(t, `[]`, string(body["clubIds"]))
			_, _ = w.Write([]byte(`{"deliveries":[]}`))
		}))
		defer server.Close()

		payload, err := upstream.New(server.URL).FetchDeliveries(context.Background(), testCookie, nil, "2025-06-09")
		require.NoError(t, err)
		require.Empty(t, payload.Deliveries)
	})
}
