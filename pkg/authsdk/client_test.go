package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func signAccess(t *testing.T, ttl time.Duration) string {
	t.Helper()
	signer, err := jwtx.NewHS256Signer([]byte("sdk-test-secret-0123"))
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewClaims("user-1", "device-1", "test", ttl, time.Now()))
	require.NoError(t, err)
	return token
}

// fakeService mimics the refresh cookie handling of the real service.
type fakeService struct {
	t         *testing.T
	refreshes atomic.Int32
	current   atomic.Value // live refresh token
	accessTTL time.Duration
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()

	issue := func(w http.ResponseWriter, refresh string) {
		f.current.Store(refresh)
		http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: refresh, HttpOnly: true})
		httpx.WriteJSON(w, http.StatusOK, TokenResponse{AccessToken: signAccess(f.t, f.accessTTL)})
	}
	authorized := func(r *http.Request) bool {
		ck, err := r.Cookie(RefreshCookie)
		return err == nil && ck.Value == f.current.Load()
	}

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret1" {
			httpx.WriteErrors(w, http.StatusUnauthorized, FieldMessage{
				Field:   "login, email, password",
				Message: "Login, email or password is incorrect",
			})
			return
		}
		issue(w, "refresh-0")
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			httpx.WriteErrors(w, http.StatusUnauthorized)
			return
		}
		n := f.refreshes.Add(1)
		issue(w, "refresh-"+string(rune('0'+n)))
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			httpx.WriteErrors(w, http.StatusUnauthorized)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, MeResponse{UserID: "user-1", Login: "alice", Email: "alice@example.com"})
	})
	mux.HandleFunc("GET /security/devices", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			httpx.WriteErrors(w, http.StatusUnauthorized)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, []Device{{DeviceID: "device-1", Title: r.UserAgent(), IP: "127.0.0.1"}})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			httpx.WriteErrors(w, http.StatusUnauthorized)
			return
		}
		f.current.Store("")
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /auth/registration", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteErrors(w, http.StatusBadRequest, FieldMessage{Field: "login", Message: "User with provided login already exists"})
	})
	return mux
}

func newFake(t *testing.T, accessTTL time.Duration) (*SDKClient, *fakeService) {
	t.Helper()
	f := &fakeService{t: t, accessTTL: accessTTL}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewSDKClient(srv.URL + "/"), f
}

func TestLoginAndSession(t *testing.T) {
	ctx := context.Background()
	client, fake := newFake(t, 10*time.Minute)

	session, err := client.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.Equal(t, "refresh-0", session.RefreshToken())
	require.NotEmpty(t, session.AccessToken())

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", me.Login)
	require.Zero(t, fake.refreshes.Load(), "fresh access token needs no refresh")

	devices, err := session.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "authsdk", devices[0].Title)

	require.NoError(t, session.Refresh(ctx))
	require.Equal(t, "refresh-1", session.RefreshToken())

	require.NoError(t, session.Logout(ctx))
	require.Empty(t, session.RefreshToken())
	_, err = session.Devices(ctx)
	require.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestSession_RefreshesExpiringAccessToken(t *testing.T) {
	ctx := context.Background()
	// Tokens inside the refresh buffer count as expired.
	client, fake := newFake(t, 10*time.Second)

	session, err := client.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = session.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, fake.refreshes.Load())
	require.Equal(t, "refresh-1", session.RefreshToken())
}

func TestSession_StaleRefreshToken(t *testing.T) {
	ctx := context.Background()
	client, _ := newFake(t, 10*time.Minute)

	session, err := client.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	stale := client.NewSessionFromTokens(session.AccessToken(), session.RefreshToken())

	require.NoError(t, session.Refresh(ctx))

	err = stale.Refresh(ctx)
	require.True(t, IsStatus(err, http.StatusUnauthorized), "got %v", err)
}

func TestAPIError(t *testing.T) {
	ctx := context.Background()
	client, _ := newFake(t, 10*time.Minute)

	t.Run("login failure carries field errors", func(t *testing.T) {
		_, err := client.Login(ctx, "alice", "wrong")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		msg, ok := apiErr.Field("login, email, password")
		require.True(t, ok)
		require.Equal(t, "Login, email or password is incorrect", msg)
	})

	t.Run("no content endpoints", func(t *testing.T) {
		err := client.Register(ctx, RegistrationRequest{Login: "alice", Email: "a@example.com", Password: "secret1"})
		require.True(t, IsStatus(err, http.StatusBadRequest))
		require.Contains(t, err.Error(), "login: User with provided login already exists")
	})

	t.Run("unknown route", func(t *testing.T) {
		err := client.ConfirmRegistration(ctx, "code")
		require.Equal(t, http.StatusNotFound, StatusCode(err))
	})
}
