package api

import (
	"time"

	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/config"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

const defaultLogPageSize = 50

// Handler contains all properties to serve the API
type Handler struct {
	nc          *nats.Conn
	store       storage.Interface
	ctrl        *controlchannel.Controller
	logPageSize int
	startedAt   time.Time
}

// NewHandler create a new API handler
func NewHandler(nc *nats.Conn, store storage.Interface, ctrl *controlchannel.Controller, c *config.Config) *Handler {
	logPageSize := defaultLogPageSize
	if c != nil && c.LogPageSize > 0 {
		logPageSize = c.LogPageSize
	}

	return &Handler{
		nc:          nc,
		store:       store,
		ctrl:        ctrl,
		logPageSize: logPageSize,
		startedAt:   time.Now().Round(time.Second).UTC(),
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")
	api.GET("/rooms", h.handleFetchRooms)
	api.POST("/rooms", h.handleCreateRoom)
	api.PATCH("/rooms/:name/access", h.handleSetRoomAccess)
	api.POST("/rooms/:name/trigger", h.handleTriggerRoom)
	api.GET("/rooms/:name/logs", h.handleFetchRoomLogs)

	api.POST("/trigger/:deviceId", h.handleTriggerDevice)

	api.GET("/devices", h.handleFetchDevices)
	api.GET("/health", h.handleHealth)

	api.Any("/realtime-events", h.realtimeEventsHandler())
}
