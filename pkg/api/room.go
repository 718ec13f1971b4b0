package api

import (
	"net/http"

	"github.com/labstack/echo"

	"github.com/AJITHPRASAD95/door1/pkg/api/resource"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

func (h *Handler) handleFetchRooms(c echo.Context) error {
	m, err := h.store.Rooms().FetchAll()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}

	return c.JSON(http.StatusOK, resource.NewRoomList(m))
}

// handleCreateRoom creates a room or, when a room of that name exists
// already, updates it in place.
func (h *Handler) handleCreateRoom(c echo.Context) error {
	r := &resource.RoomResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	m, err := resource.ValidateRoom(r)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	existing, err := h.store.Rooms().FindByName(m.RoomName)
	if err != nil && err != storage.ErrNotFound {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}

	if existing != nil {
		m.LastAccessed = existing.LastAccessed
		if err := h.store.Rooms().Update(m); err != nil {
			return c.JSON(http.StatusInternalServerError, errorBody(err))
		}
		return c.JSON(http.StatusOK, resource.NewRoom(m))
	}

	if err := h.store.Rooms().Create(m); err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}

	return c.JSON(http.StatusCreated, resource.NewRoom(m))
}

func (h *Handler) handleSetRoomAccess(c echo.Context) error {
	name := c.Param("name")

	r := &resource.RoomAccessResource{}
	if err := c.Bind(r); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(err))
	}

	// The toggle goes through the controller so it serializes with the
	// authorize-then-record section of in-flight dispatches.
	m, err := h.ctrl.SetRoomAccess(name, r.DoorAccess)
	if err == storage.ErrNotFound {
		return c.JSON(http.StatusNotFound, errorBody(err))
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, errorBody(err))
	}

	return c.JSON(http.StatusOK, resource.NewRoom(m))
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
