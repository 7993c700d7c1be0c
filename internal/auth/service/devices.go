package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/idx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
)

// DeviceService lets a user inspect and revoke their own sessions. The
// acting user is always identified by their refresh token.
type DeviceService struct {
	Store  store.Store
	Tokens *TokenIssuer
	Now    func() time.Time
}

func (s *DeviceService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// GetDevices lists the user's live sessions, most recently active first.
func (s *DeviceService) GetDevices(ctx context.Context, refreshToken string) domain.Result[[]domain.DeviceView] {
	binding, res, ok := bindRefresh(ctx, s.Tokens, "get devices", refreshToken)
	if !ok {
		return domain.Result[[]domain.DeviceView]{Status: res.Status, Errors: res.Errors, Err: res.Err}
	}

	devices, err := s.Store.Devices().ListUserDevices(ctx, binding.User.ID, s.now())
	if err != nil {
		return serverError[[]domain.DeviceView](ctx, "get devices: list", err)
	}

	views := make([]domain.DeviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, d.View())
	}
	return domain.Ok(domain.StatusSuccess, views)
}

// DeleteDeviceByID revokes one session. The target must belong to the acting
// user; otherwise the answer is Forbidden.
func (s *DeviceService) DeleteDeviceByID(ctx context.Context, refreshToken, deviceID string) domain.Result[domain.None] {
	binding, res, ok := bindRefresh(ctx, s.Tokens, "delete device", refreshToken)
	if !ok {
		return res
	}
	if !idx.Valid(deviceID) {
		return domain.Fail[domain.None](domain.StatusNotFound)
	}

	target, err := s.Store.Devices().GetDeviceByID(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusNotFound)
	}
	if err != nil {
		return serverError[domain.None](ctx, "delete device: lookup", err)
	}
	if target.UserID != binding.User.ID {
		slogx.FromContext(ctx).Warn("attempt to delete foreign device",
			slog.String("user_id", binding.User.ID),
			slog.String("device_id", deviceID),
		)
		return domain.Fail[domain.None](domain.StatusForbidden)
	}

	err = s.Store.Devices().DeleteDevice(ctx, deviceID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusNotFound)
	}
	if err != nil {
		return serverError[domain.None](ctx, "delete device: delete", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// DeleteOtherDevices revokes every session of the user except the current one.
func (s *DeviceService) DeleteOtherDevices(ctx context.Context, refreshToken string) domain.Result[domain.None] {
	binding, res, ok := bindRefresh(ctx, s.Tokens, "delete other devices", refreshToken)
	if !ok {
		return res
	}
	if err := s.Store.Devices().DeleteUserDevicesExcept(ctx, binding.User.ID, binding.Device.ID); err != nil {
		return serverError[domain.None](ctx, "delete other devices", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}
