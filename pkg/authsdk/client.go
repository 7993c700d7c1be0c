package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the bloggers platform authentication API.
// It provides access to unauthenticated operations and can create
// authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent on every request. The service uses it as the title
	// of the device a login creates.
	UserAgent string
}

// NewSDKClient creates a new client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: "authsdk",
	}
}

// Login authenticates with a login or email and returns a Session holding
// the access token and the refresh cookie.
func (c *SDKClient) Login(ctx context.Context, loginOrEmail, password string) (*Session, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   LoginRequest{LoginOrEmail: loginOrEmail, Password: password},
	})
	if err != nil {
		return nil, err
	}

	ck, hasCookie := refreshCookie(resp)
	var tokens TokenResponse
	if err := decodeJSON(resp, &tokens, http.StatusOK); err != nil {
		return nil, err
	}
	if !hasCookie || ck.Value == "" {
		return nil, ErrMissingRefreshCookie
	}
	return c.NewSessionFromTokens(tokens.AccessToken, ck.Value), nil
}

// Register creates an unconfirmed account. The service emails a
// confirmation code to the address.
func (c *SDKClient) Register(ctx context.Context, req RegistrationRequest) error {
	return c.postNoContent(ctx, "/auth/registration", req)
}

// ConfirmRegistration redeems the emailed confirmation code.
func (c *SDKClient) ConfirmRegistration(ctx context.Context, code string) error {
	return c.postNoContent(ctx, "/auth/registration-confirmation", ConfirmationRequest{Code: code})
}

// ResendConfirmation asks for a fresh confirmation code.
func (c *SDKClient) ResendConfirmation(ctx context.Context, email string) error {
	return c.postNoContent(ctx, "/auth/registration-email-resending", EmailRequest{Email: email})
}

// RecoverPassword asks for a recovery code. It succeeds for unknown
// addresses too.
func (c *SDKClient) RecoverPassword(ctx context.Context, email string) error {
	return c.postNoContent(ctx, "/auth/password-recovery", EmailRequest{Email: email})
}

// NewPassword redeems a recovery code. Every session of the user is revoked.
func (c *SDKClient) NewPassword(ctx context.Context, recoveryCode, newPassword string) error {
	return c.postNoContent(ctx, "/auth/new-password", NewPasswordRequest{
		NewPassword:  newPassword,
		RecoveryCode: recoveryCode,
	})
}

// CreateUser creates a confirmed user with administrator credentials.
func (c *SDKClient) CreateUser(ctx context.Context, adminLogin, adminPassword string, req RegistrationRequest) (*User, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users",
		body:   req,
		basic:  &[2]string{adminLogin, adminPassword},
	})
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user and all their sessions with administrator
// credentials.
func (c *SDKClient) DeleteUser(ctx context.Context, adminLogin, adminPassword, userID string) error {
	resp, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/users/" + url.PathEscape(userID),
		basic:  &[2]string{adminLogin, adminPassword},
	})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (c *SDKClient) postNoContent(ctx context.Context, path string, body any) error {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
