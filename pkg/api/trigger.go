package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel"
)

// TriggerRequest is the optional POST body of a trigger call.
type TriggerRequest struct {
	DurationMs int `json:"durationMs"`
}

func (h *Handler) handleTriggerRoom(c echo.Context) error {
	name := c.Param("name")

	r := &TriggerRequest{}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
	}

	result, err := h.ctrl.TriggerRoom(name, r.DurationMs)
	if err != nil {
		return triggerErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) handleTriggerDevice(c echo.Context) error {
	deviceID := c.Param("deviceId")

	r := &TriggerRequest{}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(r); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody(err))
		}
	}

	result, err := h.ctrl.TriggerDevice(deviceID, r.DurationMs)
	if err != nil {
		return triggerErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// triggerErrorResponse maps the dispatch error taxonomy onto status
// codes. Anything outside the taxonomy is an unexpected internal error
// and surfaces as a generic failure.
func triggerErrorResponse(c echo.Context, err error) error {
	switch {
	case controlchannel.IsAccessDeniedError(err):
		return c.JSON(http.StatusForbidden, errorBody(err))
	case controlchannel.IsRoomNotFoundError(err):
		return c.JSON(http.StatusNotFound, errorBody(err))
	case controlchannel.IsTargetNotFoundError(err):
		return c.JSON(http.StatusNotFound, errorBody(err))
	case controlchannel.IsNoDevicesConnectedError(err):
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	case controlchannel.IsDispatchFailedError(err):
		return c.JSON(http.StatusServiceUnavailable, errorBody(err))
	default:
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}
}
