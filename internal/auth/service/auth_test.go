package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/mailx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")

	t.Run("by login creates one device holding the refresh token", func(t *testing.T) {
		pair := f.login(t, "alice", "secret1", "firefox")

		user, err := f.store.Users().GetUserByLogin(ctx, "alice")
		require.NoError(t, err)
		devices, err := f.store.Devices().ListUserDevices(ctx, user.ID, f.clock.Now())
		require.NoError(t, err)
		require.Len(t, devices, 1)

		d := devices[0]
		require.Equal(t, "firefox", d.Title)
		require.Equal(t, "203.0.113.7", d.IP)
		require.Equal(t, epoch, d.LastActiveAt)
		require.Equal(t, epoch.Add(testRefreshTTL), d.ExpiresAt)

		plain, err := f.cipher.Decrypt(d.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, pair.RefreshToken, plain)

		claims, ok := f.tokens.VerifyToken(pair.AccessToken, AccessToken)
		require.True(t, ok)
		require.Equal(t, user.ID, claims.UserID)
		require.Equal(t, d.ID, claims.DeviceID)
	})

	t.Run("by email", func(t *testing.T) {
		f.login(t, "alice@example.com", "secret1", "")
	})

	t.Run("empty title becomes unknown", func(t *testing.T) {
		pair := f.login(t, "alice", "secret1", "")
		binding, err := f.tokens.VerifyRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "unknown", binding.Device.Title)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		wrong := f.auth.Login(ctx, LoginInput{LoginOrEmail: "alice", Password: "nope"})
		ghost := f.auth.Login(ctx, LoginInput{LoginOrEmail: "bob", Password: "secret1"})

		require.Equal(t, domain.StatusUnauthorized, wrong.Status)
		require.Equal(t, wrong.Status, ghost.Status)
		require.Equal(t, wrong.Errors, ghost.Errors)
		require.Equal(t, []domain.FieldError{{
			Field:   "login, email, password",
			Message: "Login, email or password is incorrect",
		}}, wrong.Errors)
		require.Empty(t, wrong.Data.RefreshToken)
	})
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res := f.auth.RegisterUser(ctx, RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"})
	require.Equal(t, domain.StatusNoContent, res.Status)

	msg, ok := f.mailer.Last("alice@example.com")
	require.True(t, ok)
	require.Equal(t, "Confirm your email", msg.Subject)
	require.Contains(t, msg.HTML, "https://blogs.example.com/confirm-email?code=")

	user, err := f.store.Users().GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	require.False(t, user.EmailConfirmation.IsConfirmed)
	require.Equal(t, epoch.Add(DefaultConfirmationTTL), user.EmailConfirmation.ExpiresAt)
	require.NotEqual(t, f.mailedCode(t, "alice@example.com"), user.EmailConfirmation.Code, "code is stored as a fingerprint")
	require.NotContains(t, user.PasswordHash, "secret1")

	tests := []struct {
		name  string
		in    RegisterInput
		field string
		msg   string
	}{
		{
			name:  "duplicate login",
			in:    RegisterInput{Login: "alice", Email: "other@example.com", Password: "secret1"},
			field: "login",
			msg:   "User with provided login already exists",
		},
		{
			name:  "duplicate email",
			in:    RegisterInput{Login: "bob", Email: "alice@example.com", Password: "secret1"},
			field: "email",
			msg:   "User with provided email already exists",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := f.auth.RegisterUser(ctx, tc.in)
			require.Equal(t, domain.StatusBadRequest, res.Status)
			require.Equal(t, []domain.FieldError{{Field: tc.field, Message: tc.msg}}, res.Errors)
		})
	}
}

type failingSender struct{}

func (failingSender) Send(context.Context, mailx.Message) error { return errors.New("smtp down") }

func TestRegisterUser_MailFailure(t *testing.T) {
	f := newFixture(t)
	f.auth.Mailer = failingSender{}

	res := f.auth.RegisterUser(context.Background(), RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"})
	require.Equal(t, domain.StatusServerError, res.Status)
	require.Error(t, res.Err)
}

func TestConfirmEmailByCode(t *testing.T) {
	ctx := context.Background()

	t.Run("second use is rejected", func(t *testing.T) {
		f := newFixture(t)
		require.Equal(t, domain.StatusNoContent,
			f.auth.RegisterUser(ctx, RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"}).Status)
		code := f.mailedCode(t, "alice@example.com")

		require.Equal(t, domain.StatusNoContent, f.auth.ConfirmEmailByCode(ctx, code).Status)

		again := f.auth.ConfirmEmailByCode(ctx, code)
		require.Equal(t, domain.StatusBadRequest, again.Status)
		require.Equal(t, []domain.FieldError{{Field: "code", Message: "Confirmation code is already been applied"}}, again.Errors)

		user, err := f.store.Users().GetUserByLogin(ctx, "alice")
		require.NoError(t, err)
		require.True(t, user.EmailConfirmation.IsConfirmed)
	})

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture(t)
		res := f.auth.ConfirmEmailByCode(ctx, "f0f0f0f0-0000-4000-8000-000000000000")
		require.Equal(t, domain.StatusBadRequest, res.Status)
		require.Equal(t, []domain.FieldError{{Field: "code", Message: "Confirmation code is incorrect"}}, res.Errors)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture(t)
		f.auth.RegisterUser(ctx, RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"})
		code := f.mailedCode(t, "alice@example.com")

		f.clock.Advance(DefaultConfirmationTTL)
		res := f.auth.ConfirmEmailByCode(ctx, code)
		require.Equal(t, domain.StatusBadRequest, res.Status)
		require.Equal(t, []domain.FieldError{{Field: "code", Message: "Confirmation code is expired"}}, res.Errors)
	})
}

func TestResendConfirmationCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.auth.RegisterUser(ctx, RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"})
	first := f.mailedCode(t, "alice@example.com")

	t.Run("unknown email", func(t *testing.T) {
		res := f.auth.ResendConfirmationCode(ctx, "ghost@example.com")
		require.Equal(t, domain.StatusBadRequest, res.Status)
		require.Equal(t, []domain.FieldError{{Field: "email", Message: "Email is incorrect"}}, res.Errors)
	})

	t.Run("new code replaces the old one", func(t *testing.T) {
		f.clock.Advance(time.Hour)
		require.Equal(t, domain.StatusNoContent, f.auth.ResendConfirmationCode(ctx, "alice@example.com").Status)
		second := f.mailedCode(t, "alice@example.com")
		require.NotEqual(t, first, second)

		require.Equal(t, domain.StatusBadRequest, f.auth.ConfirmEmailByCode(ctx, first).Status)

		// The new code carries a fresh expiry.
		f.clock.Advance(time.Hour)
		require.Equal(t, domain.StatusNoContent, f.auth.ConfirmEmailByCode(ctx, second).Status)
	})

	t.Run("already confirmed", func(t *testing.T) {
		res := f.auth.ResendConfirmationCode(ctx, "alice@example.com")
		require.Equal(t, domain.StatusBadRequest, res.Status)
		require.Equal(t, []domain.FieldError{{Field: "email", Message: "Email is already confirmed"}}, res.Errors)
	})
}

func TestUpdateTokens_Rotates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")
	first := f.login(t, "alice", "secret1", "firefox")

	f.clock.Advance(time.Minute)
	res := f.auth.UpdateTokens(ctx, first.RefreshToken)
	require.Equal(t, domain.StatusSuccess, res.Status)
	second := res.Data
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err := f.tokens.VerifyRefreshToken(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefresh, "rotated token must be dead")

	binding, err := f.tokens.VerifyRefreshToken(ctx, second.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, epoch.Add(time.Minute), binding.Device.LastActiveAt)
	require.Equal(t, epoch.Add(time.Minute+testRefreshTTL), binding.Device.ExpiresAt)

	replay := f.auth.UpdateTokens(ctx, first.RefreshToken)
	require.Equal(t, domain.StatusUnauthorized, replay.Status)
}

func TestUpdateTokens_ConcurrentRotation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")
	pair := f.login(t, "alice", "secret1", "firefox")

	const callers = 2
	results := make([]domain.Result[domain.TokenPair], callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = f.auth.UpdateTokens(ctx, pair.RefreshToken)
		}()
	}
	close(start)
	wg.Wait()

	var winners, valid int
	for _, res := range results {
		switch res.Status {
		case domain.StatusSuccess:
			winners++
			if _, err := f.tokens.VerifyRefreshToken(ctx, res.Data.RefreshToken); err == nil {
				valid++
			}
		case domain.StatusUnauthorized:
		default:
			t.Fatalf("unexpected status %s: %v", res.Status, res.Err)
		}
	}
	require.Equal(t, 1, winners)
	require.Equal(t, 1, valid)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")
	pair := f.login(t, "alice", "secret1", "firefox")

	require.Equal(t, domain.StatusNoContent, f.auth.Logout(ctx, pair.RefreshToken).Status)
	require.Equal(t, domain.StatusUnauthorized, f.auth.UpdateTokens(ctx, pair.RefreshToken).Status)
	require.Equal(t, domain.StatusUnauthorized, f.auth.Logout(ctx, pair.RefreshToken).Status)
	require.Equal(t, domain.StatusUnauthorized, f.auth.Logout(ctx, "").Status)
}

func TestRecoverPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is not revealed", func(t *testing.T) {
		f := newFixture(t)
		res := f.auth.RecoverPassword(ctx, "ghost@example.com")
		require.Equal(t, domain.StatusNoContent, res.Status)
		_, sent := f.mailer.Last("ghost@example.com")
		require.False(t, sent)
	})

	t.Run("new password revokes sessions and burns the code", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "alice@example.com", "secret1")
		pair := f.login(t, "alice", "secret1", "firefox")

		require.Equal(t, domain.StatusNoContent, f.auth.RecoverPassword(ctx, "alice@example.com").Status)
		msg, ok := f.mailer.Last("alice@example.com")
		require.True(t, ok)
		require.Equal(t, "Password recovery", msg.Subject)
		code := f.mailedCode(t, "alice@example.com")

		require.Equal(t, domain.StatusNoContent, f.auth.UpdatePassword(ctx, code, "secret2").Status)

		require.Equal(t, domain.StatusUnauthorized, f.auth.UpdateTokens(ctx, pair.RefreshToken).Status)
		require.Equal(t, domain.StatusUnauthorized,
			f.auth.Login(ctx, LoginInput{LoginOrEmail: "alice", Password: "secret1"}).Status)
		f.login(t, "alice", "secret2", "firefox")

		reuse := f.auth.UpdatePassword(ctx, code, "secret3")
		require.Equal(t, domain.StatusBadRequest, reuse.Status)
		require.Equal(t, []domain.FieldError{{Field: "recoveryCode", Message: "Recovery code is incorrect"}}, reuse.Errors)
	})

	t.Run("expired code", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "alice", "alice@example.com", "secret1")
		require.Equal(t, domain.StatusNoContent, f.auth.RecoverPassword(ctx, "alice@example.com").Status)
		code := f.mailedCode(t, "alice@example.com")

		f.clock.Advance(DefaultRecoveryTTL)
		res := f.auth.UpdatePassword(ctx, code, "secret2")
		require.Equal(t, domain.StatusBadRequest, res.Status)
		require.Equal(t, []domain.FieldError{{Field: "recoveryCode", Message: "Recovery code is expired"}}, res.Errors)

		f.login(t, "alice", "secret1", "firefox")
	})
}

func TestUpdatePassword_ConcurrentRedemption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "alice@example.com", "secret1")
	require.Equal(t, domain.StatusNoContent, f.auth.RecoverPassword(ctx, "alice@example.com").Status)
	code := f.mailedCode(t, "alice@example.com")

	passwords := []string{"secret2", "secret3"}
	results := make([]domain.Result[domain.None], len(passwords))
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, pw := range passwords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = f.auth.UpdatePassword(ctx, code, pw)
		}()
	}
	close(start)
	wg.Wait()

	winner := -1
	for i, res := range results {
		switch res.Status {
		case domain.StatusNoContent:
			require.Equal(t, -1, winner, "recovery code redeemed twice")
			winner = i
		case domain.StatusBadRequest:
			require.Equal(t, []domain.FieldError{{Field: "recoveryCode", Message: "Recovery code is incorrect"}}, res.Errors)
		default:
			t.Fatalf("unexpected status %s: %v", res.Status, res.Err)
		}
	}
	require.NotEqual(t, -1, winner)

	f.login(t, "alice", passwords[winner], "firefox")
	loser := passwords[1-winner]
	require.Equal(t, domain.StatusUnauthorized,
		f.auth.Login(ctx, LoginInput{LoginOrEmail: "alice", Password: loser}).Status)
}

func TestConfirmEmailByCode_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.Equal(t, domain.StatusNoContent,
		f.auth.RegisterUser(ctx, RegisterInput{Login: "alice", Email: "alice@example.com", Password: "secret1"}).Status)
	code := f.mailedCode(t, "alice@example.com")

	const callers = 4
	results := make([]domain.Result[domain.None], callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = f.auth.ConfirmEmailByCode(ctx, code)
		}()
	}
	close(start)
	wg.Wait()

	var confirmed int
	for _, res := range results {
		switch res.Status {
		case domain.StatusNoContent:
			confirmed++
		case domain.StatusBadRequest:
			require.Equal(t, []domain.FieldError{{Field: "code", Message: "Confirmation code is already been applied"}}, res.Errors)
		default:
			t.Fatalf("unexpected status %s: %v", res.Status, res.Err)
		}
	}
	require.Equal(t, 1, confirmed)
}
