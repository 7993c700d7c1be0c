package sqlite

import (
	"context"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	err := r.q.CreateUser(ctx, gen.CreateUserParams{
		ID:                    u.ID,
		Login:                 u.Login,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		CreatedAt:             toMillis(u.CreatedAt),
		ConfirmationCode:      u.EmailConfirmation.Code,
		ConfirmationExpiresAt: toMillis(u.EmailConfirmation.ExpiresAt),
		IsConfirmed:           u.EmailConfirmation.IsConfirmed,
	})
	return mapConflict(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.one(r.q.GetUserByID(ctx, id))
}

func (r *usersRepo) GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (domain.User, error) {
	return r.one(r.q.GetUserByLoginOrEmail(ctx, gen.GetUserByLoginOrEmailParams{
		Login: loginOrEmail,
		Email: loginOrEmail,
	}))
}

func (r *usersRepo) GetUserByLogin(ctx context.Context, login string) (domain.User, error) {
	return r.one(r.q.GetUserByLogin(ctx, login))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.one(r.q.GetUserByEmail(ctx, email))
}

func (r *usersRepo) GetUserByConfirmationCode(ctx context.Context, codeHash string) (domain.User, error) {
	return r.one(r.q.GetUserByConfirmationCode(ctx, codeHash))
}

func (r *usersRepo) GetUserByRecoveryCode(ctx context.Context, codeHash string) (domain.User, error) {
	return r.one(r.q.GetUserByRecoveryCode(ctx, codeHash))
}

func (r *usersRepo) ConfirmEmail(ctx context.Context, userID string) error {
	return mapAffected(r.q.ConfirmUserEmail(ctx, userID))
}

func (r *usersRepo) UpdateConfirmationCode(
	ctx context.Context,
	userID, codeHash string,
	expiresAt time.Time,
) error {
	return mapAffected(r.q.UpdateUserConfirmationCode(ctx, gen.UpdateUserConfirmationCodeParams{
		ConfirmationCode:      codeHash,
		ConfirmationExpiresAt: toMillis(expiresAt),
		ID:                    userID,
	}))
}

func (r *usersRepo) SetRecoveryCode(
	ctx context.Context,
	userID, codeHash string,
	expiresAt time.Time,
) error {
	return mapAffected(r.q.SetUserRecoveryCode(ctx, gen.SetUserRecoveryCodeParams{
		RecoveryCode:      codeHash,
		RecoveryExpiresAt: toMillis(expiresAt),
		ID:                userID,
	}))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, u store.PasswordUpdate) error {
	return mapAffected(r.q.UpdateUserPasswordHash(ctx, gen.UpdateUserPasswordHashParams{
		PasswordHash:      u.Hash,
		ID:                u.UserID,
		RecoveryCode:      u.RecoveryCode,
		RecoveryExpiresAt: toMillis(u.Now),
	}))
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	return mapAffected(r.q.DeleteUser(ctx, userID))
}

func (r *usersRepo) ClearExpiredRecoveryCodes(ctx context.Context, now time.Time) (int64, error) {
	return r.q.ClearExpiredRecoveryCodes(ctx, toMillis(now))
}

func (r *usersRepo) one(row gen.User, err error) (domain.User, error) {
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}
