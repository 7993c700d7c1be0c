package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/jwtx"
)

// refreshBuffer renews the access token this long before it expires.
const refreshBuffer = 30 * time.Second

// Session represents one logged-in device. Methods that need the access
// token refresh it first when it is about to expire.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere.
// The access token's expiry is read from its claims without verification.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    accessExpiry(accessToken),
	}
}

func accessExpiry(token string) time.Time {
	claims, err := jwtx.Unverified(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Add(-refreshBuffer)
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Refresh rotates the refresh token and replaces both tokens. The previous
// refresh token is dead once this returns nil.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.client.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/refresh-token",
		cookies: []*http.Cookie{{Name: RefreshCookie, Value: s.refreshToken}},
	})
	if err != nil {
		return err
	}

	ck, hasCookie := refreshCookie(resp)
	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return err
	}
	if !hasCookie || ck.Value == "" {
		return ErrMissingRefreshCookie
	}

	s.accessToken = tokens.AccessToken
	s.refreshToken = ck.Value
	s.expiresAt = accessExpiry(tokens.AccessToken)
	return nil
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return s.accessToken, nil
}

// withRefreshCookie builds a request authenticated by the refresh cookie.
func (s *Session) withRefreshCookie(method, path string) (request, error) {
	s.mu.RLock()
	token := s.refreshToken
	s.mu.RUnlock()
	if token == "" {
		return request{}, ErrNoRefreshToken
	}
	return request{
		method:  method,
		path:    path,
		cookies: []*http.Cookie{{Name: RefreshCookie, Value: token}},
	}, nil
}

// Logout revokes this device. The session is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	req, err := s.withRefreshCookie(http.MethodPost, "/auth/logout")
	if err != nil {
		return err
	}
	resp, err := s.client.do(ctx, req)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken, s.refreshToken, s.expiresAt = "", "", time.Time{}
	s.mu.Unlock()
	return nil
}

// Me returns the profile of the logged-in user.
func (s *Session) Me(ctx context.Context) (*MeResponse, error) {
	token, err := s.getValidToken(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.do(ctx, request{method: http.MethodGet, path: "/auth/me", bearer: token})
	if err != nil {
		return nil, err
	}

	var me MeResponse
	if err := decodeJSON(resp, &me, http.StatusOK); err != nil {
		return nil, err
	}
	return &me, nil
}

// Devices lists the user's active sessions, this one included.
func (s *Session) Devices(ctx context.Context) ([]Device, error) {
	req, err := s.withRefreshCookie(http.MethodGet, "/security/devices")
	if err != nil {
		return nil, err
	}
	resp, err := s.client.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var devices []Device
	if err := decodeJSON(resp, &devices, http.StatusOK); err != nil {
		return nil, err
	}
	return devices, nil
}

// DeleteDevice revokes one of the user's sessions.
func (s *Session) DeleteDevice(ctx context.Context, deviceID string) error {
	req, err := s.withRefreshCookie(http.MethodDelete, "/security/devices/"+url.PathEscape(deviceID))
	if err != nil {
		return err
	}
	resp, err := s.client.do(ctx, req)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// DeleteOtherDevices revokes every session of the user except this one.
func (s *Session) DeleteOtherDevices(ctx context.Context) error {
	req, err := s.withRefreshCookie(http.MethodDelete, "/security/devices")
	if err != nil {
		return err
	}
	resp, err := s.client.do(ctx, req)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
