package http

import (
	"net/http"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
)

// MeHandler serves GET /auth/me behind httpx.BearerAuth.
type MeHandler struct {
	UserService *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteStatus(w, http.StatusUnauthorized)
		return
	}

	writeResult(w, h.UserService.GetMe(ctx, userID), func(u domain.UserView) any {
		return authsdk.MeResponse{
			Email:  u.Email,
			Login:  u.Login,
			UserID: u.ID,
		}
	})
}
