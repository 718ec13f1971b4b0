package controlchannel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage/memory"
)

func TestSweeperEvictsStaleSessions(t *testing.T) {
	ctrl := newTestController(memory.NewStore())
	sw := NewSweeper(ctrl, time.Minute, 300*time.Second)

	stale := &fakeTransport{}
	fresh := &fakeTransport{}
	ctrl.registry.Upsert("ESP32_STALE", "", stale, "", model.RoomUnassigned)
	ctrl.registry.Upsert("ESP32_FRESH", "", fresh, "", model.RoomUnassigned)

	now := time.Now().Round(time.Second).UTC()
	ctrl.registry.Lock()
	ctrl.registry.sessions["ESP32_STALE"].LastSeenAt = now.Add(-301 * time.Second)
	ctrl.registry.Unlock()

	sw.sweep(now)

	assert.Equal(t, 1, ctrl.registry.Len())
	_, ok := ctrl.registry.Lookup("ESP32_FRESH")
	require.True(t, ok)

	// The evicted session's connection is dropped as well.
	assert.True(t, stale.terminated)
	assert.False(t, fresh.terminated)
}

func TestSweeperStartStop(t *testing.T) {
	ctrl := newTestController(memory.NewStore())
	sw := NewSweeper(ctrl, 10*time.Millisecond, 300*time.Second)

	sw.Start()
	time.Sleep(30 * time.Millisecond)
	sw.Stop()

	// Stop blocks until the loop exited; reaching this point is the
	// assertion.
}
