package http

import (
	"net/http"
	"strings"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
)

// defaultDeviceTitle names sessions opened without a User-Agent.
const defaultDeviceTitle = "unknown"

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	ClientIP    httpx.KeyExtractor
	cookies     refreshCookies
}

// writeTokens answers a login or refresh: the access token in the body and
// the refresh token in its cookie.
func (h *AuthHandler) writeTokens(w http.ResponseWriter, res domain.Result[domain.TokenPair]) {
	if !res.Succeeded() {
		writeFailure(w, res)
		return
	}
	h.cookies.set(w, res.Data.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{AccessToken: res.Data.AccessToken})
}

// HandleLogin serves POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !decodeBody(w, r, &body) {
		return
	}

	title := strings.TrimSpace(r.UserAgent())
	if title == "" {
		title = defaultDeviceTitle
	}

	res := h.AuthService.Login(r.Context(), service.LoginInput{
		LoginOrEmail: body.LoginOrEmail,
		Password:     body.Password,
		DeviceTitle:  title,
		IP:           h.ClientIP(r),
	})
	h.writeTokens(w, res)
}

// HandleRefresh serves POST /auth/refresh-token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	res := h.AuthService.UpdateTokens(r.Context(), h.cookies.read(r))
	h.writeTokens(w, res)
}

// HandleLogout serves POST /auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	res := h.AuthService.Logout(r.Context(), h.cookies.read(r))
	if res.Succeeded() {
		h.cookies.clear(w)
	}
	writeResult(w, res, nil)
}

// HandleRegistration serves POST /auth/registration.
func (h *AuthHandler) HandleRegistration(w http.ResponseWriter, r *http.Request) {
	var body registrationBody
	if !decodeBody(w, r, &body) {
		return
	}
	res := h.AuthService.RegisterUser(r.Context(), service.RegisterInput{
		Login:    body.Login,
		Email:    body.Email,
		Password: body.Password,
	})
	writeResult(w, res, nil)
}

// HandleConfirmation serves POST /auth/registration-confirmation.
func (h *AuthHandler) HandleConfirmation(w http.ResponseWriter, r *http.Request) {
	var body confirmationBody
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, h.AuthService.ConfirmEmailByCode(r.Context(), body.Code), nil)
}

// HandleEmailResending serves POST /auth/registration-email-resending.
func (h *AuthHandler) HandleEmailResending(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, h.AuthService.ResendConfirmationCode(r.Context(), body.Email), nil)
}

// HandlePasswordRecovery serves POST /auth/password-recovery.
func (h *AuthHandler) HandlePasswordRecovery(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, h.AuthService.RecoverPassword(r.Context(), body.Email), nil)
}

// HandleNewPassword serves POST /auth/new-password.
func (h *AuthHandler) HandleNewPassword(w http.ResponseWriter, r *http.Request) {
	var body newPasswordBody
	if !decodeBody(w, r, &body) {
		return
	}
	writeResult(w, h.AuthService.UpdatePassword(r.Context(), body.RecoveryCode, body.NewPassword), nil)
}
