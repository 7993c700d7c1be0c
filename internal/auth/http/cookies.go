package http

import (
	"net/http"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
)

// refreshCookies writes and reads the refresh token cookie.
type refreshCookies struct {
	secure bool
	ttl    time.Duration
}

func (c refreshCookies) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c refreshCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// read returns the presented refresh token, or "" when there is none. The
// services answer Unauthorized for an empty token.
func (refreshCookies) read(r *http.Request) string {
	ck, err := r.Cookie(authsdk.RefreshCookie)
	if err != nil {
		return ""
	}
	return ck.Value
}
