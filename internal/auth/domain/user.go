package domain

import "time"

type User struct {
	ID           string
	Login        string
	Email        string
	PasswordHash string // argon2id or bcrypt encoded
	CreatedAt    time.Time

	EmailConfirmation EmailConfirmation
	PasswordRecovery  PasswordRecovery
}

// EmailConfirmation tracks the registration confirmation state. Code holds the
// fingerprint of the code that was emailed, never the code itself. Users
// created by an administrator are confirmed with an empty code.
type EmailConfirmation struct {
	Code        string
	ExpiresAt   time.Time
	IsConfirmed bool
}

// PasswordRecovery holds the fingerprint of the outstanding recovery code, if
// any. An empty Code means no recovery is in progress.
type PasswordRecovery struct {
	Code      string
	ExpiresAt time.Time
}

// UserView is the public projection returned by the admin and /auth/me
// endpoints.
type UserView struct {
	ID        string
	Login     string
	Email     string
	CreatedAt time.Time
}

func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
