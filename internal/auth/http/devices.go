package http

import (
	"net/http"

	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/domain"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/internal/auth/service"
	"github.com/Sergei-Vorfolomeev/bloggers-platform/pkg/authsdk"
)

// DevicesHandler serves /security/devices. Every call is authenticated by
// the refresh token cookie.
type DevicesHandler struct {
	DeviceService *service.DeviceService
	cookies       refreshCookies
}

// HandleList serves GET /security/devices.
func (h *DevicesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	res := h.DeviceService.GetDevices(r.Context(), h.cookies.read(r))
	writeResult(w, res, func(views []domain.DeviceView) any {
		out := make([]authsdk.Device, 0, len(views))
		for _, v := range views {
			out = append(out, authsdk.Device{
				IP:             v.IP,
				Title:          v.Title,
				LastActiveDate: v.LastActiveAt,
				DeviceID:       v.ID,
			})
		}
		return out
	})
}

// HandleDelete serves DELETE /security/devices/{id}.
func (h *DevicesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	res := h.DeviceService.DeleteDeviceByID(r.Context(), h.cookies.read(r), r.PathValue("id"))
	writeResult(w, res, nil)
}

// HandleDeleteOthers serves DELETE /security/devices.
func (h *DevicesHandler) HandleDeleteOthers(w http.ResponseWriter, r *http.Request) {
	res := h.DeviceService.DeleteOtherDevices(r.Context(), h.cookies.read(r))
	writeResult(w, res, nil)
}
