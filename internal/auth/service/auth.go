package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/store"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/cryptox"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/idx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/mailx"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
	"github.com/google/uuid"
)

// Field messages returned to clients.
const (
	fieldCredentials = "login, email, password"
	msgCredentials   = "Login, email or password is incorrect"

	msgLoginTaken = "User with provided login already exists"
	msgEmailTaken = "User with provided email already exists"

	msgCodeIncorrect = "Confirmation code is incorrect"
	msgCodeApplied   = "Confirmation code is already been applied"
	msgCodeExpired   = "Confirmation code is expired"

	msgEmailIncorrect = "Email is incorrect"
	msgEmailConfirmed = "Email is already confirmed"

	msgRecoveryIncorrect = "Recovery code is incorrect"
	msgRecoveryExpired   = "Recovery code is expired"
)

const (
	DefaultConfirmationTTL = 90 * time.Minute
	DefaultRecoveryTTL     = time.Hour
)

// AuthService runs the login, registration and session lifecycle flows.
// Expected business outcomes come back as a Result status; only collaborator
// failures become StatusServerError.
type AuthService struct {
	Store  store.Store
	Tokens *TokenIssuer
	Hasher cryptox.Hasher
	Mailer mailx.Sender

	// PublicURL prefixes the links placed in emails.
	PublicURL string

	// SessionTTL is applied to a device on login and on every rotation.
	// Zero means the refresh token TTL.
	SessionTTL      time.Duration
	ConfirmationTTL time.Duration
	RecoveryTTL     time.Duration

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return s.Tokens.TTL(RefreshToken)
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// serverError logs the cause and wraps it into a StatusServerError result.
func serverError[T any](ctx context.Context, op string, err error) domain.Result[T] {
	err = fmt.Errorf("%s: %w", op, err)
	slogx.FromContext(ctx).Error("operation failed", slog.String("op", op), slog.Any("error", err))
	return domain.Internal[T](err)
}

func fieldError(field, msg string) domain.FieldError {
	return domain.FieldError{Field: field, Message: msg}
}

type LoginInput struct {
	LoginOrEmail string
	Password     string
	DeviceTitle  string
	IP           string
}

// Login checks credentials and opens a new device session. Unknown users and
// wrong passwords get the same Unauthorized answer.
func (s *AuthService) Login(ctx context.Context, in LoginInput) domain.Result[domain.TokenPair] {
	denied := domain.Fail[domain.TokenPair](domain.StatusUnauthorized, fieldError(fieldCredentials, msgCredentials))

	user, err := s.Store.Users().GetUserByLoginOrEmail(ctx, in.LoginOrEmail)
	if errors.Is(err, store.ErrNotFound) {
		return denied
	}
	if err != nil {
		return serverError[domain.TokenPair](ctx, "login: lookup user", err)
	}

	if err := s.Hasher.Verify(in.Password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Info("login rejected", slog.String("user_id", user.ID))
			return denied
		}
		return serverError[domain.TokenPair](ctx, "login: verify password", err)
	}

	now := s.now()
	deviceID := idx.NewAt(now).String()
	pair, err := s.Tokens.GenerateTokens(user.ID, deviceID)
	if err != nil {
		return serverError[domain.TokenPair](ctx, "login: generate tokens", err)
	}

	title := in.DeviceTitle
	if title == "" {
		title = "unknown"
	}
	device := domain.Device{
		ID:           deviceID,
		UserID:       user.ID,
		IP:           in.IP,
		Title:        title,
		RefreshToken: pair.RefreshCipher,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.sessionTTL()),
	}
	if err := s.Store.Devices().CreateDevice(ctx, device); err != nil {
		return serverError[domain.TokenPair](ctx, "login: create device", err)
	}

	slogx.FromContext(ctx).Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("device_id", deviceID),
	)
	return domain.Ok(domain.StatusSuccess, pair)
}

type RegisterInput struct {
	Login    string
	Email    string
	Password string
}

// RegisterUser creates an unconfirmed user and emails a confirmation code.
func (s *AuthService) RegisterUser(ctx context.Context, in RegisterInput) domain.Result[domain.None] {
	users := s.Store.Users()

	if _, err := users.GetUserByLogin(ctx, in.Login); err == nil {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("login", msgLoginTaken))
	} else if !errors.Is(err, store.ErrNotFound) {
		return serverError[domain.None](ctx, "register: check login", err)
	}
	if _, err := users.GetUserByEmail(ctx, in.Email); err == nil {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("email", msgEmailTaken))
	} else if !errors.Is(err, store.ErrNotFound) {
		return serverError[domain.None](ctx, "register: check email", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return serverError[domain.None](ctx, "register: hash password", err)
	}

	now := s.now()
	code := uuid.NewString()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		EmailConfirmation: domain.EmailConfirmation{
			Code:      cryptox.FingerprintToken(code),
			ExpiresAt: now.Add(orDefault(s.ConfirmationTTL, DefaultConfirmationTTL)),
		},
	}
	if err := users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			msg := msgLoginTaken
			if conflict.Field == "email" {
				msg = msgEmailTaken
			}
			return domain.Fail[domain.None](domain.StatusBadRequest, fieldError(conflict.Field, msg))
		}
		return serverError[domain.None](ctx, "register: create user", err)
	}

	msg, err := confirmationMessage(s.PublicURL, user.Email, code)
	if err != nil {
		return serverError[domain.None](ctx, "register: render email", err)
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return serverError[domain.None](ctx, "register: send email", err)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// ConfirmEmailByCode accepts a confirmation code once.
func (s *AuthService) ConfirmEmailByCode(ctx context.Context, code string) domain.Result[domain.None] {
	user, err := s.Store.Users().GetUserByConfirmationCode(ctx, cryptox.FingerprintToken(code))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("code", msgCodeIncorrect))
	}
	if err != nil {
		return serverError[domain.None](ctx, "confirm email: lookup user", err)
	}

	switch {
	case user.EmailConfirmation.IsConfirmed:
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("code", msgCodeApplied))
	case !s.now().Before(user.EmailConfirmation.ExpiresAt):
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("code", msgCodeExpired))
	}

	// Only the first of two concurrent confirmations flips the flag.
	err = s.Store.Users().ConfirmEmail(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("code", msgCodeApplied))
	}
	if err != nil {
		return serverError[domain.None](ctx, "confirm email: update user", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// ResendConfirmationCode replaces the pending code and emails the new one.
// The code is stored before sending so an emailed code is always redeemable.
func (s *AuthService) ResendConfirmationCode(ctx context.Context, email string) domain.Result[domain.None] {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("email", msgEmailIncorrect))
	}
	if err != nil {
		return serverError[domain.None](ctx, "resend code: lookup user", err)
	}
	if user.EmailConfirmation.IsConfirmed {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("email", msgEmailConfirmed))
	}

	code := uuid.NewString()
	expiresAt := s.now().Add(orDefault(s.ConfirmationTTL, DefaultConfirmationTTL))
	if err := s.Store.Users().UpdateConfirmationCode(ctx, user.ID, cryptox.FingerprintToken(code), expiresAt); err != nil {
		return serverError[domain.None](ctx, "resend code: store code", err)
	}

	msg, err := confirmationMessage(s.PublicURL, user.Email, code)
	if err != nil {
		return serverError[domain.None](ctx, "resend code: render email", err)
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return serverError[domain.None](ctx, "resend code: send email", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// Logout revokes the device bound to the refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) domain.Result[domain.None] {
	binding, res, ok := bindRefresh(ctx, s.Tokens, "logout", refreshToken)
	if !ok {
		return res
	}

	err := s.Store.Devices().DeleteDevice(ctx, binding.Device.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusUnauthorized)
	}
	if err != nil {
		return serverError[domain.None](ctx, "logout: delete device", err)
	}
	slogx.FromContext(ctx).Info("user logged out",
		slog.String("user_id", binding.User.ID),
		slog.String("device_id", binding.Device.ID),
	)
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// UpdateTokens rotates the device's refresh token. The swap only succeeds
// while the stored token is still the presented one, so of two concurrent
// rotations exactly one wins and the other is Unauthorized.
func (s *AuthService) UpdateTokens(ctx context.Context, refreshToken string) domain.Result[domain.TokenPair] {
	binding, err := s.Tokens.VerifyRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrInvalidRefresh) {
		return domain.Fail[domain.TokenPair](domain.StatusUnauthorized)
	}
	if err != nil {
		return serverError[domain.TokenPair](ctx, "update tokens: verify", err)
	}

	pair, err := s.Tokens.GenerateTokens(binding.User.ID, binding.Device.ID)
	if err != nil {
		return serverError[domain.TokenPair](ctx, "update tokens: generate", err)
	}

	now := s.now()
	err = s.Store.Devices().RotateRefreshToken(ctx, store.DeviceRotation{
		DeviceID:     binding.Device.ID,
		PrevToken:    binding.Device.RefreshToken,
		NextToken:    pair.RefreshCipher,
		LastActiveAt: now,
		ExpiresAt:    now.Add(s.sessionTTL()),
	})
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Warn("refresh token rotated concurrently",
			slog.String("device_id", binding.Device.ID),
		)
		return domain.Fail[domain.TokenPair](domain.StatusUnauthorized)
	}
	if err != nil {
		return serverError[domain.TokenPair](ctx, "update tokens: rotate", err)
	}
	return domain.Ok(domain.StatusSuccess, pair)
}

// RecoverPassword emails a recovery code. The answer is NoContent whether or
// not the address belongs to a user.
func (s *AuthService) RecoverPassword(ctx context.Context, email string) domain.Result[domain.None] {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Ok(domain.StatusNoContent, domain.None{})
	}
	if err != nil {
		return serverError[domain.None](ctx, "recover password: lookup user", err)
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return serverError[domain.None](ctx, "recover password: generate code", err)
	}
	expiresAt := s.now().Add(orDefault(s.RecoveryTTL, DefaultRecoveryTTL))
	if err := s.Store.Users().SetRecoveryCode(ctx, user.ID, cryptox.FingerprintToken(code), expiresAt); err != nil {
		return serverError[domain.None](ctx, "recover password: store code", err)
	}

	msg, err := recoveryMessage(s.PublicURL, user.Email, code)
	if err != nil {
		return serverError[domain.None](ctx, "recover password: render email", err)
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		return serverError[domain.None](ctx, "recover password: send email", err)
	}
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// UpdatePassword redeems a recovery code. The code is single use and every
// session of the user is revoked along with the old password.
func (s *AuthService) UpdatePassword(ctx context.Context, recoveryCode, newPassword string) domain.Result[domain.None] {
	fingerprint := cryptox.FingerprintToken(recoveryCode)
	user, err := s.Store.Users().GetUserByRecoveryCode(ctx, fingerprint)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("recoveryCode", msgRecoveryIncorrect))
	}
	if err != nil {
		return serverError[domain.None](ctx, "update password: lookup user", err)
	}
	if !s.now().Before(user.PasswordRecovery.ExpiresAt) {
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("recoveryCode", msgRecoveryExpired))
	}

	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return serverError[domain.None](ctx, "update password: hash", err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Users().UpdatePasswordHash(ctx, store.PasswordUpdate{
			UserID:       user.ID,
			RecoveryCode: fingerprint,
			Hash:         hash,
			Now:          s.now(),
		})
		if err != nil {
			return err
		}
		return tx.Devices().DeleteUserDevices(ctx, user.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		// The code was used or expired after the lookup.
		return domain.Fail[domain.None](domain.StatusBadRequest, fieldError("recoveryCode", msgRecoveryIncorrect))
	}
	if err != nil {
		return serverError[domain.None](ctx, "update password: persist", err)
	}

	slogx.FromContext(ctx).Info("password updated, sessions revoked", slog.String("user_id", user.ID))
	return domain.Ok(domain.StatusNoContent, domain.None{})
}

// bindRefresh verifies a refresh token and converts failures into a Result.
func bindRefresh(ctx context.Context, tokens *TokenIssuer, op, refreshToken string) (RefreshBinding, domain.Result[domain.None], bool) {
	binding, err := tokens.VerifyRefreshToken(ctx, refreshToken)
	if errors.Is(err, ErrInvalidRefresh) {
		return RefreshBinding{}, domain.Fail[domain.None](domain.StatusUnauthorized), false
	}
	if err != nil {
		return RefreshBinding{}, serverError[domain.None](ctx, op+": verify refresh token", err), false
	}
	return binding, domain.Result[domain.None]{}, true
}
