package roster_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/office-roster/internal/config"
	apperrors "github.com/jrsteele09/office-roster/internal/errors"
	"github.com/jrsteele09/office-roster/roster"
	"github.com/jrsteele09/office-roster/upstream"
	"github.com/jrsteele09/office-roster/upstream/sessioncache"
	"github.com/jrsteele09/office-roster/upstream/sessioncache/storefake"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	settings config.UpstreamSettings
	err      error
}

func (f fakeSettings) GetUpstreamSettings() (config.UpstreamSettings, error) {
	return f.settings, f.err
}

type fetchCall struct {
	token   string
	clubIDs []int
	from    string
}

type fakeClient struct {
	loginToken string
	loginErr   error
	logins     int

	payload    *upstream.Payload
	fetchErr   error
	fetchCalls []fetchCall
}

func (f *fakeClient) Login(_ context.Context, _ upstream.Credentials) (string, error) {
	f.logins++
	return f.loginToken, f.loginErr
}

func (f *fakeClient) FetchDeliveries(_ context.Context, token string, clubIDs []int, from string) (*upstream.Payload, error) {
	f.fetchCalls = append(f.fetchCalls, fetchCall{token: token, clubIDs: clubIDs, from: from})
	return f.payload, f.fetchErr
}

var credentialSettings = config.UpstreamSettings{
	Email:    "admin@example.com",
	Password: "secret",
	ClubIDs:  []int{10, 20},
}

// Saturday, so the requested window starts on the following Monday
var fixedNow = time.Date(2025, 6, 7, 9, 30, 0, 0, time.UTC)

func setupService(t *testing.T, settings roster.SettingsSource, client *fakeClient) (*roster.Service, *storefake.FakeStore) {
	t.Helper()
	store := storefake.NewFakeStore()
	cache := sessioncache.New(store, sessioncache.WithNowTime(func() time.Time { return fixedNow }))
	service, err := roster.NewService(settings, client, cache, roster.WithNowTime(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return service, store
}

func TestNewService_RequiresDependencies(t *testing.T) {
	cache := sessioncache.New(storefake.NewFakeStore())

	_, err := roster.NewService(nil, &fakeClient{}, cache)
	require.Error(t, err)
	_, err = roster.NewService(fakeSettings{}, nil, cache)
	require.Error(t, err)
	_, err = roster.NewService(fakeSettings{}, &fakeClient{}, nil)
	require.Error(t, err)
}

func TestService_WeeklyRoster(t *testing.T) {
	t.Run("logs in and aggregates", func(t *testing.T) {
		client := &fakeClient{
			loginToken: "_easyorder_session=abc",
			payload:    payloadOf(rawPiece("2025-06-09", "1", "ann@example.com", "Ann", true)),
		}
		service, _ := setupService(t, fakeSettings{settings: credentialSettings}, client)

		got, err := service.WeeklyRoster(context.Background())
		require.NoError(t, err)
		require.Len(t, got["2025-06-09"], 1)
		require.Equal(t, []fetchCall{{token: "_easyorder_session=abc", clubIDs: []int{10, 20}, from: "2025-06-09"}}, client.fetchCalls)
	})

	t.Run("reuses the session between requests", func(t *testing.T) {
		client := &fakeClient{loginToken: "_easyorder_session=abc", payload: &upstream.Payload{}}
		service, _ := setupService(t, fakeSettings{settings: credentialSettings}, client)

		for i := 0; i < 3; i++ {
			got, err := service.WeeklyRoster(context.Background())
			require.NoError(t, err)
			require.Empty(t, got)
		}
		require.Equal(t, 1, client.logins)
		require.Len(t, client.fetchCalls, 3)
	})

	t.Run("configuration error stops before upstream", func(t *testing.T) {
		client := &fakeClient{}
		cfgErr := &apperrors.ConfigurationError{Setting: "FORKABLE_CLUB_IDS"}
		service, _ := setupService(t, fakeSettings{err: cfgErr}, client)

		_, err := service.WeeklyRoster(context.Background())
		require.Equal(t, "FORKABLE_CLUB_IDS is missing", err.Error())
		require.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
		require.Zero(t, client.logins)
		require.Empty(t, client.fetchCalls)
	})

	t.Run("login failure keeps the upstream status", func(t *testing.T) {
		client := &fakeClient{loginErr: &apperrors.UpstreamHTTPError{StatusCode: http.StatusBadGateway, Message: "upstream login failed"}}
		service, _ := setupService(t, fakeSettings{settings: credentialSettings}, client)

		_, err := service.WeeklyRoster(context.Background())
		var authErr *apperrors.UpstreamAuthError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, http.StatusBadGateway, apperrors.HTTPStatus(err))
		require.Empty(t, client.fetchCalls)
	})

	t.Run("fetch status is passed through", func(t *testing.T) {
		client := &fakeClient{
			loginToken: "_easyorder_session=abc",
			fetchErr:   &apperrors.UpstreamHTTPError{StatusCode: http.StatusServiceUnavailable, Message: "upstream deliveries request failed"},
		}
		service, store := setupService(t, fakeSettings{settings: credentialSettings}, client)

		_, err := service.WeeklyRoster(context.Background())
		require.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
		require.Zero(t, store.Deletes)
	})

	t.Run("rejected session is invalidated", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			client := &fakeClient{
				loginToken: "_easyorder_session=stale",
				fetchErr:   &apperrors.UpstreamHTTPError{StatusCode: status},
			}
			service, store := setupService(t, fakeSettings{settings: credentialSettings}, client)

			_, err := service.WeeklyRoster(context.Background())
			require.Equal(t, status, apperrors.HTTPStatus(err))
			require.Equal(t, 1, store.Deletes)

			client.fetchErr = nil
			client.payload = &upstream.Payload{}
			_, err = service.WeeklyRoster(context.Background())
			require.NoError(t, err)
			require.Equal(t, 2, client.logins)
		}
	})

	t.Run("transport failure is a server error", func(t *testing.T) {
		client := &fakeClient{
			loginToken: "_easyorder_session=abc",
			fetchErr:   &apperrors.UpstreamTransportError{Op: "upstream deliveries", Err: errors.New("connection reset")},
		}
		service, _ := setupService(t, fakeSettings{settings: credentialSettings}, client)

		_, err := service.WeeklyRoster(context.Background())
		require.Error(t, err)
		require.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	})

	t.Run("static cookie skips login", func(t *testing.T) {
		client := &fakeClient{payload: &upstream.Payload{}}
		settings := config.UpstreamSettings{SessionCookie: "preissued", ClubIDs: []int{5}}
		service, store := setupService(t, fakeSettings{settings: settings}, client)

		_, err := service.WeeklyRoster(context.Background())
		require.NoError(t, err)
		require.Zero(t, client.logins)
		require.Zero(t, store.Sets)
		require.Equal(t, "_easyorder_session=preissued", client.fetchCalls[0].token)
	})

	t.Run("static cookie is never invalidated", func(t *testing.T) {
		client := &fakeClient{fetchErr: &apperrors.UpstreamHTTPError{StatusCode: http.StatusUnauthorized}}
		settings := config.UpstreamSettings{SessionCookie: "_easyorder_session=preissued", ClubIDs: []int{5}}
		service, store := setupService(t, fakeSettings{settings: settings}, client)

		_, err := service.WeeklyRoster(context.Background())
		require.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
		require.Zero(t, store.Deletes)
		require.Equal(t, "_easyorder_session=preissued", client.fetchCalls[0].token)
	})
}
