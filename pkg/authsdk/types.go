package authsdk

import (
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
)

// RefreshCookie is the name of the cookie carrying the refresh token.
const RefreshCookie = "refreshToken"

// ============================================================================
// Request Types
// ============================================================================
//
// The validate tags are enforced by the server; the SDK sends whatever it is
// given and reports the server's field errors.

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	LoginOrEmail string `json:"loginOrEmail" validate:"required,min=3,max=30"`
	Password     string `json:"password"     validate:"required"`
}

// RegistrationRequest is the body of POST /auth/registration and of the
// administrator's POST /users.
type RegistrationRequest struct {
	Login    string `json:"login"    validate:"required,min=3,max=10,login"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

// ConfirmationRequest is the body of POST /auth/registration-confirmation.
type ConfirmationRequest struct {
	Code string `json:"code" validate:"required"`
}

// EmailRequest is the body of POST /auth/registration-email-resending and
// POST /auth/password-recovery.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NewPasswordRequest is the body of POST /auth/new-password.
type NewPasswordRequest struct {
	NewPassword  string `json:"newPassword"  validate:"required,min=6,max=20"`
	RecoveryCode string `json:"recoveryCode" validate:"required"`
}

// ============================================================================
// Response Types
// ============================================================================

// TokenResponse is returned by login and refresh. The refresh token travels
// in the RefreshCookie, never in the body.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MeResponse is returned by GET /auth/me.
type MeResponse struct {
	Email  string `json:"email"`
	Login  string `json:"login"`
	UserID string `json:"userId"`
}

// Device is one active session as listed by GET /security/devices.
type Device struct {
	IP             string    `json:"ip"`
	Title          string    `json:"title"`
	LastActiveDate time.Time `json:"lastActiveDate"`
	DeviceID       string    `json:"deviceId"`
}

// User is returned by the administrator's POST /users.
type User struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ============================================================================
// Error Types
// ============================================================================

// FieldMessage and ErrorsMessages are the error body of every 4xx response.
type (
	FieldMessage   = httpx.FieldMessage
	ErrorsMessages = httpx.ErrorsMessages
)

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
