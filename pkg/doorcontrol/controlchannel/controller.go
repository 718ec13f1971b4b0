package controlchannel

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/config"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel/websocket"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/proto"
	"github.com/AJITHPRASAD95/door1/pkg/metrics"
	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

// NATS subjects for fan-out to web observers.
const (
	SubjectRoster     = "door1.devices.roster"
	SubjectRoomEvents = "door1.rooms.events"
)

// Controller owns the session registry and the command dispatch engine.
// It is created once at process start and handed by reference to the
// websocket handler, the API handler and the sweeper.
type Controller struct {
	nc       *nats.Conn
	store    storage.Interface
	registry *Registry

	// dispatchMu serializes the authorize-then-record-access critical
	// section. An administrative access toggle can never interleave
	// between the authorization read and the access log append of one
	// dispatch.
	dispatchMu sync.Mutex

	devicePrefix   string
	defaultPulseMs int
	sessionTimeout int
	pingInterval   int
}

func NewController(nc *nats.Conn, store storage.Interface, c *config.Config) *Controller {
	ctrl := &Controller{
		nc:             nc,
		store:          store,
		registry:       NewRegistry(),
		devicePrefix:   "ESP32_",
		defaultPulseMs: 3000,
		sessionTimeout: 60,
		pingInterval:   25,
	}

	if c != nil {
		if c.DeviceIDPrefix != "" {
			ctrl.devicePrefix = c.DeviceIDPrefix
		}
		if c.DefaultPulseMs > 0 {
			ctrl.defaultPulseMs = c.DefaultPulseMs
		}
		if c.SessionTimeout > 0 {
			ctrl.sessionTimeout = c.SessionTimeout
		}
		if c.PingInterval > 0 {
			ctrl.pingInterval = c.PingInterval
		}
	}

	return ctrl
}

// Registry exposes the session registry for read access (status and
// diagnostics endpoints).
func (ctrl *Controller) Registry() *Registry {
	return ctrl.registry
}

// NewControlChannel creates a control channel handler for one accepted
// websocket connection.
func (ctrl *Controller) NewControlChannel(driver *websocket.Driver) *ControlChannel {
	cc := &ControlChannel{
		ctrl:           ctrl,
		driver:         driver,
		remoteAddr:     driver.RemoteAddr(),
		status:         StatusEstablished,
		stopCh:         make(chan struct{}),
		registeredCh:   make(chan bool, 1),
		pingCh:         make(chan bool),
		sessionTimeout: ctrl.sessionTimeout,
	}

	go cc.inboxWorker()

	// Ensure that registration happens within a given period.
	go cc.waitForRegistrationOrClose()

	return cc
}

// RegisterSession upserts a registry entry for the device. The upsert is
// synchronous with a best-known room name; the room binding is refined
// asynchronously once the room lookup resolves, so a racing second
// registration never observes a half-written entry.
func (ctrl *Controller) RegisterSession(cc *ControlChannel, deviceID string, details proto.RegisterMessageDetails) (interface{}, error) {
	remoteAddr := cc.RemoteAddr()
	if details.IP != "" {
		remoteAddr = details.IP
	}

	sess := ctrl.registry.Upsert(deviceID, details.ChipID, cc, remoteAddr, model.RoomUnassigned)
	metrics.RegistrationsTotal.Inc()

	log.WithFields(log.Fields{
		"device_id":   deviceID,
		"remote_addr": remoteAddr,
	}).Info("controller registered a device session")

	// Refine the room binding once the store answers. Registry mutation
	// stays synchronous; only the lookup suspends.
	go func() {
		room, err := ctrl.store.Rooms().FindByDeviceID(deviceID)
		if err != nil && err != storage.ErrNotFound {
			log.Errorf("controller failed to look up room for device '%s': %v", deviceID, err)
			return
		}
		if err == nil {
			ctrl.registry.SetRoomName(deviceID, room.RoomName)
		}
		ctrl.publishRoster()
	}()

	cc.AdmitRegistration(deviceID, ctrl.sessionTimeout)
	ctrl.publishRoster()

	type registrationDetails struct {
		SessionTimeout int    `json:"session_timeout,omitempty"`
		PingInterval   int    `json:"ping_interval,omitempty"`
		RoomName       string `json:"room,omitempty"`
	}

	return &registrationDetails{
		SessionTimeout: ctrl.sessionTimeout,
		PingInterval:   ctrl.pingInterval,
		RoomName:       sess.RoomName,
	}, nil
}

// UnregisterSession removes the registry entry bound to the given control
// channel. Stale disconnects for an already-replaced transport are a
// no-op.
func (ctrl *Controller) UnregisterSession(cc *ControlChannel) {
	sess, ok := ctrl.registry.RemoveByTransport(cc)
	if !ok {
		return
	}

	log.Infof("controller removed the session for device '%s'", sess.DeviceID)
	ctrl.publishRoster()
}

// TouchSession advances the liveness timestamp for the device.
func (ctrl *Controller) TouchSession(deviceID string) {
	ctrl.registry.Touch(deviceID)
}

// SetRoomAccess toggles the room's authorization flag. The toggle takes
// the dispatch mutex, so it can never interleave with the
// authorize-then-record section of an in-flight dispatch.
func (ctrl *Controller) SetRoomAccess(roomName string, doorAccess bool) (*model.Room, error) {
	ctrl.dispatchMu.Lock()
	defer ctrl.dispatchMu.Unlock()

	room, err := ctrl.store.Rooms().FindByName(roomName)
	if err != nil {
		return nil, err
	}

	room.DoorAccess = doorAccess
	if err := ctrl.store.Rooms().Update(room); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"room":        roomName,
		"door_access": doorAccess,
	}).Info("controller changed room door access")

	return room, nil
}

// HandleFeedback records a device-reported door-opened event. Feedback is
// fire-and-forget; it is never correlated back to the trigger request.
func (ctrl *Controller) HandleFeedback(deviceID, roomName string) {
	metrics.FeedbackTotal.Inc()

	rec := &model.AccessLog{
		RoomName:  ctrl.auditTarget(deviceID, roomName),
		Action:    model.ActionDoorOpenedFeedback,
		Outcome:   model.OutcomeSuccess,
		Detail:    "reported by device " + deviceID,
		Timestamp: time.Now().Round(time.Second).UTC(),
	}
	ctrl.recordAudit(rec)

	ctrl.publishRoomEvent(rec)
}

func (ctrl *Controller) auditTarget(deviceID, roomName string) string {
	if roomName != "" && roomName != model.RoomUnassigned {
		return roomName
	}
	return deviceID
}

// recordAudit appends one audit record. Audit persistence is best effort;
// a failing store never propagates into the device or request flow.
func (ctrl *Controller) recordAudit(rec *model.AccessLog) {
	rec.ID = newAuditID()
	if err := ctrl.store.AccessLogs().Create(rec); err != nil {
		log.Errorf("controller failed to persist audit record for '%s': %v", rec.RoomName, err)
	}
}

func (ctrl *Controller) publishRoster() {
	metrics.ActiveSessions.Set(float64(ctrl.registry.Len()))

	if ctrl.nc == nil {
		return
	}

	type rosterDevice struct {
		DeviceID   string `json:"deviceId"`
		RoomName   string `json:"room"`
		RemoteAddr string `json:"remoteAddr"`
	}
	type rosterEvent struct {
		Devices []rosterDevice `json:"devices"`
		Count   int            `json:"count"`
	}

	event := rosterEvent{Devices: make([]rosterDevice, 0)}
	for _, sess := range ctrl.registry.Snapshot() {
		event.Devices = append(event.Devices, rosterDevice{
			DeviceID:   sess.DeviceID,
			RoomName:   sess.RoomName,
			RemoteAddr: sess.RemoteAddr,
		})
	}
	event.Count = len(event.Devices)

	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("controller failed to marshal roster event: %v", err)
		return
	}

	if err := ctrl.nc.Publish(SubjectRoster, data); err != nil {
		log.Errorf("controller failed to publish roster event: %v", err)
	}
}

func (ctrl *Controller) publishRoomEvent(rec *model.AccessLog) {
	if ctrl.nc == nil {
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"room":      rec.RoomName,
		"action":    rec.Action,
		"outcome":   rec.Outcome,
		"detail":    rec.Detail,
		"timestamp": rec.Timestamp,
	})
	if err != nil {
		log.Errorf("controller failed to marshal room event: %v", err)
		return
	}

	if err := ctrl.nc.Publish(SubjectRoomEvents, data); err != nil {
		log.Errorf("controller failed to publish room event: %v", err)
	}
}
