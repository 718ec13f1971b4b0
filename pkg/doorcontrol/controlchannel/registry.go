package controlchannel

import (
	"sync"
	"time"
)

// Transport is the non-owning handle the registry keeps for each live
// device connection. The connection itself is owned by the websocket
// driver; a transport value becomes invalid once the device disconnects.
type Transport interface {
	PushTrigger(roomName string, durationMs int, timestamp time.Time) error
	Terminate()
}

// Session is one registry entry for a currently-reachable device.
type Session struct {
	DeviceID     string
	ChipID       string
	RoomName     string
	RemoteAddr   string
	RegisteredAt time.Time
	LastSeenAt   time.Time

	transport Transport
}

// Transport returns the live transport handle of the session.
func (s Session) Transport() Transport {
	return s.transport
}

// Registry is the in-memory table of currently-connected devices, keyed
// by device ID. All mutations are serialized behind one mutex; none of
// them suspend, so a second registration for a device arriving while a
// room lookup for the first is still pending cannot corrupt the entry.
type Registry struct {
	sync.RWMutex
	sessions map[string]*Session
	// order keeps registration order so that iteration (snapshots, fuzzy
	// resolution tie-breaks) is deterministic instead of map-ordered.
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		order:    make([]string, 0),
	}
}

// Upsert creates a session for deviceID or, if one exists, replaces its
// transport handle and address while preserving RegisteredAt. A displaced
// transport is terminated so the old connection cannot keep acting on
// behalf of the session. There is no error condition. The returned copy
// reflects the entry after the upsert.
func (r *Registry) Upsert(deviceID, chipID string, t Transport, remoteAddr, roomName string) Session {
	r.Lock()

	now := time.Now().Round(time.Second).UTC()

	if sess, ok := r.sessions[deviceID]; ok {
		displaced := sess.transport
		sess.ChipID = chipID
		sess.transport = t
		sess.RemoteAddr = remoteAddr
		sess.RoomName = roomName
		sess.LastSeenAt = now
		out := *sess
		r.Unlock()

		if displaced != nil && displaced != t {
			displaced.Terminate()
		}
		return out
	}

	sess := &Session{
		DeviceID:     deviceID,
		ChipID:       chipID,
		RoomName:     roomName,
		RemoteAddr:   remoteAddr,
		RegisteredAt: now,
		LastSeenAt:   now,
		transport:    t,
	}
	r.sessions[deviceID] = sess
	r.order = append(r.order, deviceID)
	out := *sess
	r.Unlock()

	return out
}

// Touch advances LastSeenAt for an existing entry. A liveness signal from
// an unregistered device is ignored, not fatal.
func (r *Registry) Touch(deviceID string) bool {
	r.Lock()
	defer r.Unlock()

	sess, ok := r.sessions[deviceID]
	if !ok {
		return false
	}

	sess.LastSeenAt = time.Now().Round(time.Second).UTC()
	return true
}

// SetRoomName refines the room binding of an existing session. Used after
// registration when the asynchronous room lookup resolves.
func (r *Registry) SetRoomName(deviceID, roomName string) bool {
	r.Lock()
	defer r.Unlock()

	sess, ok := r.sessions[deviceID]
	if !ok {
		return false
	}

	sess.RoomName = roomName
	return true
}

// RemoveByTransport removes the entry whose current transport handle
// matches. A stale disconnect for an already-replaced transport is a
// no-op, which guards against duplicate disconnect events after a device
// re-registered over a new connection.
func (r *Registry) RemoveByTransport(t Transport) (Session, bool) {
	r.Lock()
	defer r.Unlock()

	for deviceID, sess := range r.sessions {
		if sess.transport == t {
			out := *sess
			r.remove(deviceID)
			return out, true
		}
	}

	return Session{}, false
}

// RemoveStale removes and returns all entries whose LastSeenAt lies more
// than threshold behind now.
func (r *Registry) RemoveStale(now time.Time, threshold time.Duration) []Session {
	r.Lock()
	defer r.Unlock()

	removed := make([]Session, 0)
	for _, deviceID := range append([]string(nil), r.order...) {
		sess := r.sessions[deviceID]
		if now.Sub(sess.LastSeenAt) > threshold {
			removed = append(removed, *sess)
			r.remove(deviceID)
		}
	}

	return removed
}

func (r *Registry) Lookup(deviceID string) (Session, bool) {
	r.RLock()
	defer r.RUnlock()

	sess, ok := r.sessions[deviceID]
	if !ok {
		return Session{}, false
	}

	return *sess, true
}

// Snapshot returns copies of all sessions in registration order. The
// copies do not alias mutable registry state, so readers never observe
// torn entries under concurrent mutation.
func (r *Registry) Snapshot() []Session {
	r.RLock()
	defer r.RUnlock()

	out := make([]Session, 0, len(r.order))
	for _, deviceID := range r.order {
		out = append(out, *r.sessions[deviceID])
	}

	return out
}

// DeviceIDs returns the known device IDs in registration order.
func (r *Registry) DeviceIDs() []string {
	r.RLock()
	defer r.RUnlock()

	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.sessions)
}

// remove expects the registry lock to be held.
func (r *Registry) remove(deviceID string) {
	delete(r.sessions, deviceID)
	for i, id := range r.order {
		if id == deviceID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
