package sqlite

import (
	"context"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite/gen"
)

type devicesRepo struct {
	q *gen.Queries
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	return r.q.CreateDevice(ctx, gen.CreateDeviceParams{
		ID:           d.ID,
		UserID:       d.UserID,
		Ip:           d.IP,
		Title:        d.Title,
		RefreshToken: d.RefreshToken,
		CreatedAt:    toMillis(d.CreatedAt),
		LastActiveAt: toMillis(d.LastActiveAt),
		ExpiresAt:    toMillis(d.ExpiresAt),
	})
}

func (r *devicesRepo) GetDeviceByID(ctx context.Context, id string) (domain.Device, error) {
	row, err := r.q.GetDeviceByID(ctx, id)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return mapDevice(row), nil
}

func (r *devicesRepo) ListUserDevices(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]domain.Device, error) {
	rows, err := r.q.ListUserDevices(ctx, gen.ListUserDevicesParams{
		UserID:    userID,
		ExpiresAt: toMillis(now),
	})
	if err != nil {
		return nil, err
	}

	devices := make([]domain.Device, 0, len(rows))
	for _, row := range rows {
		devices = append(devices, mapDevice(row))
	}
	return devices, nil
}

func (r *devicesRepo) RotateRefreshToken(ctx context.Context, rot store.DeviceRotation) error {
	return mapAffected(r.q.RotateDeviceRefreshToken(ctx, gen.RotateDeviceRefreshTokenParams{
		RefreshToken:   rot.NextToken,
		LastActiveAt:   toMillis(rot.LastActiveAt),
		ExpiresAt:      toMillis(rot.ExpiresAt),
		ID:             rot.DeviceID,
		RefreshToken_2: rot.PrevToken,
	}))
}

func (r *devicesRepo) DeleteDevice(ctx context.Context, id string) error {
	return mapAffected(r.q.DeleteDevice(ctx, id))
}

func (r *devicesRepo) DeleteUserDevicesExcept(ctx context.Context, userID, keepID string) error {
	return r.q.DeleteUserDevicesExcept(ctx, gen.DeleteUserDevicesExceptParams{
		UserID: userID,
		ID:     keepID,
	})
}

func (r *devicesRepo) DeleteUserDevices(ctx context.Context, userID string) error {
	return r.q.DeleteUserDevices(ctx, userID)
}

func (r *devicesRepo) DeleteExpiredDevices(ctx context.Context, now time.Time) (int64, error) {
	return r.q.DeleteExpiredDevices(ctx, toMillis(now))
}
