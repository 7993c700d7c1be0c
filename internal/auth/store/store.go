package store

import (
	"context"
	"errors"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// ConflictError reports which unique field rejected a write. It matches
// ErrAlreadyExists under errors.Is.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string { return "store: " + e.Field + " already exists" }

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyExists }

// Store is the root data access interface. Concrete drivers implement it and
// expose one sub-repository per aggregate so transactions stay explicit.
type Store interface {
	Users() Users
	Devices() Devices
	Connections() Connections

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn inside a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. A duplicate login or email yields a
	// *ConflictError naming the field.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLoginOrEmail matches the value against either column.
	GetUserByLoginOrEmail(ctx context.Context, loginOrEmail string) (domain.User, error)

	GetUserByLogin(ctx context.Context, login string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByConfirmationCode looks a user up by confirmation code fingerprint.
	GetUserByConfirmationCode(ctx context.Context, codeHash string) (domain.User, error)

	// GetUserByRecoveryCode looks a user up by recovery code fingerprint.
	GetUserByRecoveryCode(ctx context.Context, codeHash string) (domain.User, error)

	// ConfirmEmail flips is_confirmed. Returns ErrNotFound when the user is
	// gone or already confirmed.
	ConfirmEmail(ctx context.Context, userID string) error

	// UpdateConfirmationCode replaces the pending confirmation code.
	UpdateConfirmationCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error

	// SetRecoveryCode stores a recovery code fingerprint with its expiry.
	SetRecoveryCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error

	// UpdatePasswordHash redeems a recovery code: it sets the new hash and
	// clears the code, but only while the stored code is still RecoveryCode
	// and unexpired at Now. Otherwise it returns ErrNotFound.
	UpdatePasswordHash(ctx context.Context, u PasswordUpdate) error

	// DeleteUser cascades to devices. Returns ErrNotFound if no row changed.
	DeleteUser(ctx context.Context, userID string) error

	// ClearExpiredRecoveryCodes is housekeeping.
	ClearExpiredRecoveryCodes(ctx context.Context, now time.Time) (int64, error)
}

// PasswordUpdate describes a compare-and-swap of a user's password hash
// against a pending recovery code fingerprint.
type PasswordUpdate struct {
	UserID       string
	RecoveryCode string
	Hash         string
	Now          time.Time
}

// DeviceRotation describes a compare-and-swap of a device's refresh token.
// The update only applies while the stored token still equals PrevToken.
type DeviceRotation struct {
	DeviceID     string
	PrevToken    string
	NextToken    string
	LastActiveAt time.Time
	ExpiresAt    time.Time
}

type Devices interface {
	CreateDevice(ctx context.Context, d domain.Device) error

	GetDeviceByID(ctx context.Context, id string) (domain.Device, error)

	// ListUserDevices returns the user's sessions that have not expired at
	// now, most recently active first.
	ListUserDevices(ctx context.Context, userID string, now time.Time) ([]domain.Device, error)

	// RotateRefreshToken swaps the stored token. Returns ErrNotFound when the
	// device is gone or PrevToken is no longer current.
	RotateRefreshToken(ctx context.Context, r DeviceRotation) error

	// DeleteDevice returns ErrNotFound if no row changed.
	DeleteDevice(ctx context.Context, id string) error

	// DeleteUserDevicesExcept removes every device of the user except keepID.
	DeleteUserDevicesExcept(ctx context.Context, userID, keepID string) error

	// DeleteUserDevices removes every device of the user.
	DeleteUserDevices(ctx context.Context, userID string) error

	// DeleteExpiredDevices is housekeeping.
	DeleteExpiredDevices(ctx context.Context, now time.Time) (int64, error)
}

type Connections interface {
	// CreateConnection appends to the request log.
	CreateConnection(ctx context.Context, c domain.Connection) error

	// CountConnectionsSince counts entries for ip and route created at or
	// after since.
	CountConnectionsSince(ctx context.Context, ip, route string, since time.Time) (int, error)

	// DeleteConnectionsBefore is housekeeping.
	DeleteConnectionsBefore(ctx context.Context, before time.Time) (int64, error)
}
