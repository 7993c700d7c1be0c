package service

import (
	"context"
	"testing"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestDeviceService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")
	f.register(t, "bob", "bob@example.com", "secret1")

	chrome := f.login(t, "alice", "secret1", "chrome")
	f.clock.Advance(time.Second)
	safari := f.login(t, "alice", "secret1", "safari")
	f.clock.Advance(time.Second)
	bobs := f.login(t, "bob", "secret1", "curl")

	list := func(t *testing.T, token string) []domain.DeviceView {
		t.Helper()
		res := f.devices.GetDevices(ctx, token)
		require.Equal(t, domain.StatusSuccess, res.Status)
		return res.Data
	}

	t.Run("lists the user's devices newest first", func(t *testing.T) {
		views := list(t, chrome.RefreshToken)
		require.Len(t, views, 2)
		require.Equal(t, "safari", views[0].Title)
		require.Equal(t, "chrome", views[1].Title)
		require.Equal(t, "203.0.113.7", views[0].IP)
	})

	t.Run("invalid token", func(t *testing.T) {
		require.Equal(t, domain.StatusUnauthorized, f.devices.GetDevices(ctx, "bogus").Status)
		require.Equal(t, domain.StatusUnauthorized, f.devices.DeleteDeviceByID(ctx, "bogus", idx.New().String()).Status)
		require.Equal(t, domain.StatusUnauthorized, f.devices.DeleteOtherDevices(ctx, "bogus").Status)
	})

	t.Run("foreign device is forbidden", func(t *testing.T) {
		target := list(t, chrome.RefreshToken)[0].ID
		res := f.devices.DeleteDeviceByID(ctx, bobs.RefreshToken, target)
		require.Equal(t, domain.StatusForbidden, res.Status)
		require.Len(t, list(t, chrome.RefreshToken), 2)
	})

	t.Run("unknown or malformed id is not found", func(t *testing.T) {
		require.Equal(t, domain.StatusNotFound, f.devices.DeleteDeviceByID(ctx, chrome.RefreshToken, idx.New().String()).Status)
		require.Equal(t, domain.StatusNotFound, f.devices.DeleteDeviceByID(ctx, chrome.RefreshToken, "123").Status)
	})

	t.Run("delete by id removes only that device", func(t *testing.T) {
		views := list(t, chrome.RefreshToken)
		var safariID string
		for _, v := range views {
			if v.Title == "safari" {
				safariID = v.ID
			}
		}
		require.NotEmpty(t, safariID)

		res := f.devices.DeleteDeviceByID(ctx, chrome.RefreshToken, safariID)
		require.Equal(t, domain.StatusNoContent, res.Status)

		views = list(t, chrome.RefreshToken)
		require.Len(t, views, 1)
		require.Equal(t, "chrome", views[0].Title)
		require.Equal(t, domain.StatusUnauthorized, f.auth.UpdateTokens(ctx, safari.RefreshToken).Status)
	})

	t.Run("delete others keeps the current one", func(t *testing.T) {
		f.login(t, "alice", "secret1", "edge")
		f.login(t, "alice", "secret1", "opera")
		require.Len(t, list(t, chrome.RefreshToken), 3)

		require.Equal(t, domain.StatusNoContent, f.devices.DeleteOtherDevices(ctx, chrome.RefreshToken).Status)

		views := list(t, chrome.RefreshToken)
		require.Len(t, views, 1)
		require.Equal(t, "chrome", views[0].Title)
		require.Len(t, list(t, bobs.RefreshToken), 1, "other users are untouched")
	})
}
