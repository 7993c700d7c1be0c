package http

import (
	"net/http"
	"time"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/httpx"
)

// LivezHandler answers 200 for as long as the process serves requests.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Truncate(time.Second).String(),
			Version: version,
		})
	}
}
