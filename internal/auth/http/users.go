package http

import (
	"net/http"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
)

// UsersHandler serves the administrator's /users endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate serves POST /users.
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body registrationBody
	if !decodeBody(w, r, &body) {
		return
	}
	res := h.UserService.CreateUser(r.Context(), service.RegisterInput{
		Login:    body.Login,
		Email:    body.Email,
		Password: body.Password,
	})
	writeResult(w, res, func(u domain.UserView) any {
		return authsdk.User{
			ID:        u.ID,
			Login:     u.Login,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		}
	})
}

// HandleDelete serves DELETE /users/{id}.
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.UserService.DeleteUser(r.Context(), r.PathValue("id")), nil)
}
