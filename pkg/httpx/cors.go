package httpx

import (
	"net/http"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/slogx"
	"github.com/rs/cors"
)

// CORS allows browsers on the given origins ("*" for any) to call the API
// with credentials, so the refresh token cookie travels cross-origin.
func CORS(origins []string) Middleware {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", slogx.RequestIDHeader},
		ExposedHeaders:   []string{"Retry-After", slogx.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler
}
