package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/cryptox"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/idx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
)

// UserService backs GET /auth/me and the administrator endpoints.
type UserService struct {
	Store  store.Store
	Hasher cryptox.Hasher
	Now    func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// GetMe returns the view of an authenticated user. A user that vanished after
// the token was issued is Unauthorized.
func (s *UserService) GetMe(ctx context.Context, userID string) domain.Result[domain.UserView] {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.UserView](domain.StatusUnauthorized)
	}
	if err != nil {
		return serverError[domain.UserView](ctx, "get me", err)
	}
	return domain.Ok(domain.StatusSuccess, user.View())
}

// CreateUser adds an already confirmed user on behalf of an administrator.
func (s *UserService) CreateUser(ctx context.Context, in RegisterInput) domain.Result[domain.UserView] {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return serverError[domain.UserView](ctx, "create user: hash password", err)
	}

	now := s.now()
	user := domain.User{
		ID:                idx.NewAt(now).String(),
		Login:             in.Login,
		Email:             in.Email,
		PasswordHash:      hash,
		CreatedAt:         now,
		EmailConfirmation: domain.EmailConfirmation{IsConfirmed: true, ExpiresAt: now},
	}

	err = s.Store.Users().CreateUser(ctx, user)
	var conflict *store.ConflictError
	if errors.As(err, &conflict) {
		msg := msgLoginTaken
		if conflict.Field == "email" {
			msg = msgEmailTaken
		}
		return domain.Fail[domain.UserView](domain.StatusBadRequest, fieldError(conflict.Field, msg))
	}
	if err != nil {
		return serverError[domain.UserView](ctx, "create user", err)
	}

	slogx.FromContext(ctx).Info("user created by admin", slog.String("user_id", user.ID))
	return domain.Ok(domain.StatusCreated, user.View())
}

// DeleteUser removes a user and, through the foreign key, their devices.
func (s *UserService) DeleteUser(ctx context.Context, userID string) domain.Result[domain.None] {
	if !idx.Valid(userID) {
		return domain.Fail[domain.None](domain.StatusNotFound)
	}
	err := s.Store.Users().DeleteUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusNotFound)
	}
	if err != nil {
		return serverError[domain.None](ctx, "delete user", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}
