package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/AJITHPRASAD95/door1/pkg/api/resource"
)

func (h *Handler) handleFetchRoomLogs(c echo.Context) error {
	name := c.Param("name")

	m, err := h.store.AccessLogs().FetchByRoom(name, h.logPageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}

	return c.JSON(http.StatusOK, resource.NewAccessLogList(m))
}
