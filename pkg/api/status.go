package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo"

	"github.com/AJITHPRASAD95/door1/pkg/api/resource"
)

func (h *Handler) handleFetchDevices(c echo.Context) error {
	return c.JSON(http.StatusOK, resource.NewDeviceList(h.ctrl.Registry().Snapshot()))
}

func (h *Handler) handleHealth(c echo.Context) error {
	registry := h.ctrl.Registry()

	devices := make([]string, 0)
	for _, sess := range registry.Snapshot() {
		devices = append(devices, sess.DeviceID)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"connectedDevices": registry.Len(),
		"devices":          devices,
		"uptimeSeconds":    int(time.Since(h.startedAt).Seconds()),
	})
}
