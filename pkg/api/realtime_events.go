package api

import (
	"encoding/json"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/pkg/api/resource"
)

// realtimeEventsHandler upgrades a web observer to a websocket fed from
// the internal NATS bus: roster changes and room audit events.
func (h *Handler) realtimeEventsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.nc == nil {
			return echo.NewHTTPError(503, "event bus is not available")
		}

		conn, _, _, err := ws.UpgradeHTTP(c.Request(), c.Response())
		if err != nil {
			log.Error("api: failed to upgrade to websocket: ", err)
			return nil
		}
		defer conn.Close()

		closedCh := make(chan struct{})

		sub, err := h.nc.Subscribe("door1.>", func(msg *nats.Msg) {
			var data interface{}
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return
			}

			event := resource.NewRealtimeEvent(msg.Subject, data)
			out, err := json.Marshal(event)
			if err != nil {
				return
			}

			if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
				log.Error("api: failed to send realtime event: ", err)
				select {
				case <-closedCh:
				default:
					close(closedCh)
				}
			}
		})
		if err != nil {
			log.Error("api: failed to subscribe to event bus: ", err)
			return nil
		}
		defer sub.Unsubscribe()

		// Block until the observer goes away. Reading serves two purposes:
		// it drains client frames and detects the close.
		go func() {
			for {
				if _, _, err := wsutil.ReadClientData(conn); err != nil {
					select {
					case <-closedCh:
					default:
						close(closedCh)
					}
					return
				}
			}
		}()

		<-closedCh
		return nil
	}
}
