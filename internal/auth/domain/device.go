package domain

import "time"

// Device is one login session. Each successful login creates a Device and
// every refresh rotates its RefreshToken. Deleting the Device revokes the
// session.
type Device struct {
	ID           string
	UserID       string
	IP           string
	Title        string
	RefreshToken string // hex ciphertext of the live refresh token
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
}

// DeviceView is what a user sees when listing their sessions.
type DeviceView struct {
	ID           string
	IP           string
	Title        string
	LastActiveAt time.Time
}

func (d Device) View() DeviceView {
	return DeviceView{
		ID:           d.ID,
		IP:           d.IP,
		Title:        d.Title,
		LastActiveAt: d.LastActiveAt,
	}
}

// Expired reports whether the session is past its expiration date at now.
func (d Device) Expired(now time.Time) bool {
	return !now.Before(d.ExpiresAt)
}
