package controlchannel

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

// fakeTransport records pushed triggers and termination for assertions.
type fakeTransport struct {
	pushed     []fakePush
	terminated bool
	failSend   bool
}

type fakePush struct {
	roomName   string
	durationMs int
}

func (t *fakeTransport) PushTrigger(roomName string, durationMs int, timestamp time.Time) error {
	if t.failSend {
		return fmt.Errorf("send failed")
	}
	t.pushed = append(t.pushed, fakePush{roomName: roomName, durationMs: durationMs})
	return nil
}

func (t *fakeTransport) Terminate() {
	t.terminated = true
}

func TestRegistryUpsertPreservesRegisteredAt(t *testing.T) {
	r := NewRegistry()

	first := r.Upsert("ESP32_AABBCC", "chip-1", &fakeTransport{}, "10.0.0.1:1234", model.RoomUnassigned)
	require.Equal(t, 1, r.Len())

	// Re-registration over a new connection replaces the transport but
	// keeps the original registration time.
	replacement := &fakeTransport{}
	second := r.Upsert("ESP32_AABBCC", "chip-1", replacement, "10.0.0.2:5678", "lab")

	assert.Equal(t, 1, r.Len())
	assert.Equal(t, first.RegisteredAt, second.RegisteredAt)
	assert.Equal(t, "10.0.0.2:5678", second.RemoteAddr)
	assert.Equal(t, "lab", second.RoomName)

	sess, ok := r.Lookup("ESP32_AABBCC")
	require.True(t, ok)
	assert.Same(t, replacement, sess.Transport().(*fakeTransport))
}

func TestRegistryUpsertTerminatesDisplacedTransport(t *testing.T) {
	r := NewRegistry()
	old := &fakeTransport{}
	r.Upsert("ESP32_AABBCC", "", old, "", model.RoomUnassigned)

	// A new connection takes over the device; the displaced one must not
	// stay open and keep acting on behalf of the session.
	replacement := &fakeTransport{}
	r.Upsert("ESP32_AABBCC", "", replacement, "", model.RoomUnassigned)
	assert.True(t, old.terminated)
	assert.False(t, replacement.terminated)

	// A re-registration over the same connection keeps it open.
	r.Upsert("ESP32_AABBCC", "", replacement, "", model.RoomUnassigned)
	assert.False(t, replacement.terminated)
}

func TestRegistryTouch(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)

	assert.True(t, r.Touch("ESP32_AABBCC"))
	assert.False(t, r.Touch("ESP32_UNKNOWN"))
}

func TestRegistrySetRoomName(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)

	require.True(t, r.SetRoomName("ESP32_AABBCC", "lab"))

	sess, ok := r.Lookup("ESP32_AABBCC")
	require.True(t, ok)
	assert.Equal(t, "lab", sess.RoomName)

	assert.False(t, r.SetRoomName("ESP32_UNKNOWN", "lab"))
}

func TestRegistryRemoveByTransport(t *testing.T) {
	r := NewRegistry()
	old := &fakeTransport{}
	r.Upsert("ESP32_AABBCC", "", old, "", model.RoomUnassigned)

	// The device re-registers over a new connection before the old one
	// reports its disconnect.
	r.Upsert("ESP32_AABBCC", "", &fakeTransport{}, "", model.RoomUnassigned)

	// The late disconnect of the replaced transport must not remove the
	// live session.
	_, ok := r.RemoveByTransport(old)
	assert.False(t, ok)
	assert.Equal(t, 1, r.Len())

	sess, ok := r.Lookup("ESP32_AABBCC")
	require.True(t, ok)

	removed, ok := r.RemoveByTransport(sess.Transport())
	require.True(t, ok)
	assert.Equal(t, "ESP32_AABBCC", removed.DeviceID)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRemoveStale(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_STALE", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("ESP32_FRESH", "", &fakeTransport{}, "", model.RoomUnassigned)

	// Backdate the stale device beyond the threshold.
	now := time.Now().Round(time.Second).UTC()
	r.Lock()
	r.sessions["ESP32_STALE"].LastSeenAt = now.Add(-301 * time.Second)
	r.sessions["ESP32_FRESH"].LastSeenAt = now.Add(-299 * time.Second)
	r.Unlock()

	removed := r.RemoveStale(now, 300*time.Second)

	require.Len(t, removed, 1)
	assert.Equal(t, "ESP32_STALE", removed[0].DeviceID)
	assert.Equal(t, 1, r.Len())

	_, ok := r.Lookup("ESP32_FRESH")
	assert.True(t, ok)
}

func TestRegistrySnapshotOrderAndIsolation(t *testing.T) {
	r := NewRegistry()
	r.Upsert("ESP32_C", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("ESP32_A", "", &fakeTransport{}, "", model.RoomUnassigned)
	r.Upsert("ESP32_B", "", &fakeTransport{}, "", model.RoomUnassigned)

	snap := r.Snapshot()
	require.Len(t, snap, 3)

	// Registration order, not lexical or map order.
	assert.Equal(t, "ESP32_C", snap[0].DeviceID)
	assert.Equal(t, "ESP32_A", snap[1].DeviceID)
	assert.Equal(t, "ESP32_B", snap[2].DeviceID)

	// Mutating the snapshot copy must not leak into the registry.
	snap[0].RoomName = "hijacked"
	sess, ok := r.Lookup("ESP32_C")
	require.True(t, ok)
	assert.Equal(t, model.RoomUnassigned, sess.RoomName)

	assert.Equal(t, []string{"ESP32_C", "ESP32_A", "ESP32_B"}, r.DeviceIDs())
}
