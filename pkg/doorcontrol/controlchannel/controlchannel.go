package controlchannel

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel/websocket"
	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/proto"
)

type Status int

const (
	StatusEstablished Status = iota
	StatusRegistered
)

// ControlChannel is the application-level state machine for one device
// connection. It consumes frames from the websocket driver's inbox and
// pushes replies and actuation commands to the outbox. It implements the
// registry's Transport interface.
type ControlChannel struct {
	sync.RWMutex
	ctrl           *Controller
	driver         *websocket.Driver
	remoteAddr     string
	status         Status
	deviceID       string
	lastMessageAt  time.Time
	sessionTimeout int

	stopCh       chan struct{}
	stopOnce     sync.Once
	registeredCh chan bool
	pingCh       chan bool
}

// Close is called when the websocket handler method is exiting, e.g. the
// connection is closed.
func (cc *ControlChannel) Close() {
	cc.stopOnce.Do(func() {
		close(cc.stopCh)
	})
	cc.ctrl.UnregisterSession(cc)
}

// RemoteAddr reports the peer address for diagnostics.
func (cc *ControlChannel) RemoteAddr() string {
	return cc.remoteAddr
}

// inboxWorker consumes frames from the driver until the driver or the
// channel stops. Events of a single connection are processed in arrival
// order; there is no ordering guarantee across connections.
func (cc *ControlChannel) inboxWorker() {
	for {
		select {
		case msg, ok := <-cc.driver.Inbox:
			if !ok {
				return
			}
			cc.HandleMessage(msg.Data)
		case <-cc.stopCh:
			return
		}
	}
}

// HandleMessage dispatches one inbound frame.
func (cc *ControlChannel) HandleMessage(data []byte) {
	msgType, msg, err := proto.UnmarshalMessage(data)
	if err != nil {
		cc.terminateAndLogError("invalid payload", err)
		return
	}

	switch msgType {
	case proto.MessageTypeRegister:
		cc.handleMessage(msg, cc.registerHandler())
	case proto.MessageTypePing:
		cc.handleMessage(msg, cc.ensureRegistered(cc.keepAliveHandler()))
	case proto.MessageTypeFeedback:
		cc.handleMessage(msg, cc.ensureRegistered(cc.feedbackHandler()))
	default:
		cc.terminateAndLog("unhandled message")
	}
}

// messageHandler is a tooling for handling incoming messages, similar to
// the go http handler implementation. It allows middleware handlers such
// as ensureRegistered.
type messageHandler interface {
	Handle(msg interface{})
}

type messageHandlerFunc func(msg interface{})

func (f messageHandlerFunc) Handle(msg interface{}) {
	f(msg)
}

func (cc *ControlChannel) handleMessage(msg interface{}, h messageHandler) {
	cc.Lock()
	cc.lastMessageAt = time.Now().Round(time.Second).UTC()
	cc.Unlock()

	h.Handle(msg)
}

func (cc *ControlChannel) registerHandler() messageHandlerFunc {
	return func(msg interface{}) {
		registerMsg, err := proto.MustRegisterMessage(msg)
		if err != nil {
			cc.terminateAndLogError("register message expected", err)
			return
		}

		if registerMsg.DeviceID == "" {
			cc.abortAndClose(ErrReasonProtocolViolation,
				proto.NewAbortMessageDetails("device ID must not be empty"))
			return
		}

		// Notify waitForRegistrationOrClose that registration is in
		// progress, so the connection is not closed meanwhile. The watchdog
		// receives only once; a re-registration over the same connection
		// must not block here.
		select {
		case cc.registeredCh <- true:
		default:
		}

		details, err := cc.ctrl.RegisterSession(cc, registerMsg.DeviceID,
			proto.ParseRegisterDetails(registerMsg.Details))
		if err != nil {
			log.Errorf("controlchannel registration failed: %s", err.Error())
			cc.terminateAndLogError("could not register controlchannel", err)
			return
		}

		cc.registeredMessage(details)
	}
}

// AdmitRegistration is called by the controller after the registry upsert.
// It flips the channel state and starts the keep-alive watchdog.
func (cc *ControlChannel) AdmitRegistration(deviceID string, sessionTimeout int) {
	cc.Lock()
	alreadyRegistered := cc.status == StatusRegistered
	cc.status = StatusRegistered
	cc.deviceID = deviceID
	cc.sessionTimeout = sessionTimeout
	cc.Unlock()

	// A re-registration over the same connection must not leak a second
	// watchdog.
	if !alreadyRegistered {
		go cc.waitForPingOrClose()
	}

	log.Infof("controlchannel registered successful for device '%s'", deviceID)
}

func (cc *ControlChannel) waitForRegistrationOrClose() {
	for {
		select {
		case <-cc.registeredCh:
			return
		case <-cc.stopCh:
			return
		case <-time.After(10 * time.Second):
			log.Warn("controlchannel registration timed out, terminating the connection")
			cc.driver.Stop()
			return
		}
	}
}

// waitForPingOrClose closes the connection when the device stops sending
// liveness pings within the session timeout.
func (cc *ControlChannel) waitForPingOrClose() {
	for {
		select {
		case <-cc.pingCh:
			// Reset the timeout only, stay in the loop.
		case <-cc.stopCh:
			return
		case <-time.After(time.Duration(cc.sessionTimeout) * time.Second):
			log.Warnf("controlchannel for device '%s' timed out, terminating the connection", cc.deviceID)
			cc.driver.Stop()
			return
		}
	}
}

func (cc *ControlChannel) ensureRegistered(next messageHandler) messageHandler {
	return messageHandlerFunc(func(msg interface{}) {
		cc.RLock()
		registered := cc.status == StatusRegistered
		cc.RUnlock()

		if !registered {
			cc.abortAndClose(ErrReasonNotRegistered,
				proto.NewAbortMessageDetails("controlchannel is not registered"))
			return
		}
		next.Handle(msg)
	})
}

func (cc *ControlChannel) keepAliveHandler() messageHandlerFunc {
	return func(msg interface{}) {
		// Notify the watchdog first, otherwise a slow store could let the
		// session timeout fire. The watchdog may already be gone.
		go func() {
			select {
			case cc.pingCh <- true:
			case <-cc.stopCh:
			}
		}()

		cc.ctrl.TouchSession(cc.deviceID)
		cc.pongMessage()
	}
}

func (cc *ControlChannel) feedbackHandler() messageHandlerFunc {
	return func(msg interface{}) {
		feedbackMsg, err := proto.MustFeedbackMessage(msg)
		if err != nil {
			cc.terminateAndLogError("feedback message expected", err)
			return
		}

		deviceID := feedbackMsg.DeviceID
		if deviceID == "" {
			deviceID = cc.deviceID
		}

		cc.ctrl.HandleFeedback(deviceID, feedbackMsg.RoomName)
	}
}

// PushTrigger sends one actuation command to the device. It implements
// the Transport interface used by the dispatcher.
func (cc *ControlChannel) PushTrigger(roomName string, durationMs int, timestamp time.Time) error {
	out, err := proto.MarshalNewTriggerMessage(roomName, durationMs, timestamp.UnixMilli())
	if err != nil {
		return err
	}

	if !cc.pushBackMessage(websocket.FlagContinue, out) {
		return NewDispatchFailedError(cc.deviceID, 1)
	}

	return nil
}

// Terminate drops the connection without a close handshake. Implements
// the Transport interface; used by the sweeper on stale sessions.
func (cc *ControlChannel) Terminate() {
	cc.driver.Stop()
}

func (cc *ControlChannel) terminateAndLog(message string) {
	log.Errorf("controlchannel terminates with message: %s", message)
	cc.pushBackMessage(websocket.FlagTerminate, nil)
}

func (cc *ControlChannel) terminateAndLogError(message string, err error) {
	log.Errorf("controlchannel terminates with message and error: %s: %s", message, err.Error())
	cc.pushBackMessage(websocket.FlagTerminate, nil)
}

func (cc *ControlChannel) abortAndClose(reason string, details interface{}) {
	out, err := proto.MarshalNewAbortMessage(reason, details)
	if err != nil {
		cc.terminateAndLogError("could not marshal message", err)
		return
	}
	cc.pushBackMessage(websocket.FlagCloseGracefully, out)
}

func (cc *ControlChannel) registeredMessage(details interface{}) {
	out, err := proto.MarshalNewRegisteredMessage("ok", details)
	if err != nil {
		cc.terminateAndLogError("could not marshal message", err)
		return
	}
	cc.pushBackMessage(websocket.FlagContinue, out)
}

func (cc *ControlChannel) pongMessage() {
	out, err := proto.MarshalNewPongMessage()
	if err != nil {
		cc.terminateAndLogError("could not marshal message", err)
		return
	}
	cc.pushBackMessage(websocket.FlagContinue, out)
}

func (cc *ControlChannel) pushBackMessage(flag websocket.Flag, data []byte) bool {
	select {
	case cc.driver.Outbox <- websocket.NewOutboxMessage(flag, data):
		return true
	default:
		return false // Buffer is full
	}
}
