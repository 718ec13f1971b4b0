package doorcontrol

import (
	"github.com/gobwas/ws"
	"github.com/labstack/echo"
	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel/websocket"
)

// Handler contains all properties to serve the device channel
type Handler struct {
	ctrl *controlchannel.Controller
}

// NewHandler create a new device channel handler
func NewHandler(ctrl *controlchannel.Controller) *Handler {
	return &Handler{
		ctrl: ctrl,
	}
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register doorcontrol routes")
	api := e.Group("/doorcontrol")
	api.Any("/v1", h.controlChannelHandler())
}

func (h *Handler) controlChannelHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			return err
		}
		defer conn.Close()

		terminateCh := make(chan struct{})
		driver := websocket.NewDriver(conn, terminateCh)
		driver.Start()
		defer driver.Close()

		cc := h.ctrl.NewControlChannel(driver)
		defer cc.Close()

		<-terminateCh

		log.Debug("handler exit control channel handler func")
		return nil
	}
}
