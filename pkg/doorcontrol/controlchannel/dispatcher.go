package controlchannel

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/AJITHPRASAD95/door1/pkg/metrics"
	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

// DispatchResult reports a successful dispatch to the caller.
type DispatchResult struct {
	Target         string `json:"target"`
	DevicesReached int    `json:"devicesReached"`
	DurationMs     int    `json:"durationMs"`
}

// TriggerRoom dispatches a door-open command for a room. If the room is
// bound to a device the command goes to that device only; otherwise it is
// broadcast best-effort to every live session.
func (ctrl *Controller) TriggerRoom(roomName string, durationMs int) (*DispatchResult, error) {
	if durationMs <= 0 {
		durationMs = ctrl.defaultPulseMs
	}

	// An empty registry short-circuits before the authorization read;
	// there is nothing a positive authorization could be dispatched to.
	if ctrl.registry.Len() == 0 {
		metrics.DispatchesTotal.WithLabelValues("room", "no_devices").Inc()
		return nil, NewNoDevicesConnectedError()
	}

	ctrl.dispatchMu.Lock()
	defer ctrl.dispatchMu.Unlock()

	room, err := ctrl.store.Rooms().FindByName(roomName)
	if err == storage.ErrNotFound {
		metrics.DispatchesTotal.WithLabelValues("room", "room_not_found").Inc()
		return nil, NewRoomNotFoundError(roomName)
	} else if err != nil {
		return nil, err
	}

	if !room.DoorAccess {
		metrics.DispatchesTotal.WithLabelValues("room", "denied").Inc()
		log.Warnf("dispatcher denied trigger for room '%s': door access disabled", roomName)
		return nil, NewAccessDeniedError(roomName)
	}

	var reached int
	if room.DeviceID != "" {
		reached, err = ctrl.dispatchTargeted(room.DeviceID, room.RoomName, durationMs)
	} else {
		reached, err = ctrl.dispatchBroadcast(room.RoomName, durationMs)
	}
	if err != nil {
		metrics.DispatchesTotal.WithLabelValues("room", "failed").Inc()
		return nil, err
	}

	ctrl.finishDispatch(room, room.RoomName, reached, durationMs)
	metrics.DispatchesTotal.WithLabelValues("room", "success").Inc()

	return &DispatchResult{
		Target:         room.RoomName,
		DevicesReached: reached,
		DurationMs:     durationMs,
	}, nil
}

// TriggerDevice dispatches a door-open command to one device addressed
// directly. The device's bound room, if any, still gates the dispatch.
func (ctrl *Controller) TriggerDevice(target string, durationMs int) (*DispatchResult, error) {
	if durationMs <= 0 {
		durationMs = ctrl.defaultPulseMs
	}

	if ctrl.registry.Len() == 0 {
		metrics.DispatchesTotal.WithLabelValues("device", "no_devices").Inc()
		return nil, NewNoDevicesConnectedError()
	}

	ctrl.dispatchMu.Lock()
	defer ctrl.dispatchMu.Unlock()

	sess, err := ctrl.registry.Resolve(target, ctrl.devicePrefix)
	if err != nil {
		metrics.DispatchesTotal.WithLabelValues("device", "unreachable").Inc()
		ctrl.recordAudit(&model.AccessLog{
			RoomName:  target,
			Action:    model.ActionTriggerFailed,
			Outcome:   model.OutcomeFailure,
			Detail:    err.Error(),
			Timestamp: time.Now().Round(time.Second).UTC(),
		})
		return nil, err
	}

	// Authorization follows the session's room binding. A device bound to
	// no room is dispatched ungated under its own identity.
	var room *model.Room
	if sess.RoomName != model.RoomUnassigned {
		room, err = ctrl.store.Rooms().FindByName(sess.RoomName)
		if err != nil && err != storage.ErrNotFound {
			return nil, err
		}
	}

	roomName := ctrl.auditTarget(sess.DeviceID, sess.RoomName)
	if room != nil {
		if !room.DoorAccess {
			metrics.DispatchesTotal.WithLabelValues("device", "denied").Inc()
			log.Warnf("dispatcher denied trigger for device '%s': door access for room '%s' disabled",
				sess.DeviceID, room.RoomName)
			return nil, NewAccessDeniedError(room.RoomName)
		}
		roomName = room.RoomName
	}

	reached, err := ctrl.sendTrigger(sess, roomName, durationMs)
	if err != nil {
		metrics.DispatchesTotal.WithLabelValues("device", "failed").Inc()
		return nil, err
	}

	ctrl.finishDispatch(room, roomName, reached, durationMs)
	metrics.DispatchesTotal.WithLabelValues("device", "success").Inc()

	return &DispatchResult{
		Target:         sess.DeviceID,
		DevicesReached: reached,
		DurationMs:     durationMs,
	}, nil
}

// dispatchTargeted resolves the bound device and sends exactly one
// actuation message.
func (ctrl *Controller) dispatchTargeted(target, roomName string, durationMs int) (int, error) {
	sess, err := ctrl.registry.Resolve(target, ctrl.devicePrefix)
	if err != nil {
		ctrl.recordAudit(&model.AccessLog{
			RoomName:  roomName,
			Action:    model.ActionTriggerFailed,
			Outcome:   model.OutcomeFailure,
			Detail:    err.Error(),
			Timestamp: time.Now().Round(time.Second).UTC(),
		})
		return 0, err
	}

	return ctrl.sendTrigger(sess, roomName, durationMs)
}

// dispatchBroadcast fans the actuation message out to every live session,
// best effort. One unreachable device must not block delivery to the
// others; partial success is success.
func (ctrl *Controller) dispatchBroadcast(roomName string, durationMs int) (int, error) {
	now := time.Now().Round(time.Second).UTC()
	sessions := ctrl.registry.Snapshot()

	reached := 0
	for _, sess := range sessions {
		if err := sess.Transport().PushTrigger(roomName, durationMs, now); err != nil {
			log.Warnf("dispatcher failed to reach device '%s': %v", sess.DeviceID, err)
			continue
		}
		reached++
	}

	if reached == 0 {
		ctrl.recordAudit(&model.AccessLog{
			RoomName:  roomName,
			Action:    model.ActionTriggerFailed,
			Outcome:   model.OutcomeFailure,
			Detail:    fmt.Sprintf("all %d send attempts failed", len(sessions)),
			Timestamp: now,
		})
		return 0, NewDispatchFailedError(roomName, len(sessions))
	}

	return reached, nil
}

func (ctrl *Controller) sendTrigger(sess Session, roomName string, durationMs int) (int, error) {
	now := time.Now().Round(time.Second).UTC()
	if err := sess.Transport().PushTrigger(roomName, durationMs, now); err != nil {
		ctrl.recordAudit(&model.AccessLog{
			RoomName:  roomName,
			Action:    model.ActionTriggerFailed,
			Outcome:   model.OutcomeFailure,
			Detail:    err.Error(),
			Timestamp: now,
		})
		return 0, NewDispatchFailedError(sess.DeviceID, 1)
	}

	log.WithFields(log.Fields{
		"device_id":   sess.DeviceID,
		"room":        roomName,
		"duration_ms": durationMs,
	}).Info("dispatcher sent door trigger")

	return 1, nil
}

// finishDispatch records the success audit entry and stamps the room's
// access time. The actuation already happened at this point, so a
// failing store never downgrades the caller-visible result; the
// persistence failure is audited best effort instead.
func (ctrl *Controller) finishDispatch(room *model.Room, roomName string, reached, durationMs int) {
	now := time.Now().Round(time.Second).UTC()

	rec := &model.AccessLog{
		RoomName:  roomName,
		Action:    model.ActionTriggerSent,
		Outcome:   model.OutcomeSuccess,
		Detail:    fmt.Sprintf("reached %d device(s), duration %dms", reached, durationMs),
		Timestamp: now,
	}
	ctrl.recordAudit(rec)
	ctrl.publishRoomEvent(rec)

	if room == nil {
		return
	}

	// Re-read instead of writing back the snapshot read at authorization
	// time; only the access timestamp belongs to this dispatch.
	current, err := ctrl.store.Rooms().FindByName(room.RoomName)
	if err != nil {
		ctrl.deferPersistence(room.RoomName, err, now)
		return
	}

	current.LastAccessed = now
	if err := ctrl.store.Rooms().Update(current); err != nil {
		ctrl.deferPersistence(room.RoomName, err, now)
	}
}

func (ctrl *Controller) deferPersistence(roomName string, err error, now time.Time) {
	log.Errorf("dispatcher failed to update room '%s' after dispatch: %v", roomName, err)
	ctrl.recordAudit(&model.AccessLog{
		RoomName:  roomName,
		Action:    model.ActionPersistenceDeferred,
		Outcome:   model.OutcomeFailure,
		Detail:    err.Error(),
		Timestamp: now,
	})
}

func newAuditID() string {
	return uuid.NewString()
}
