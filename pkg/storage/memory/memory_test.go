package memory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

func TestRoomStoreCreateAndFind(t *testing.T) {
	s := NewStore()

	err := s.Rooms().Create(&model.Room{
		RoomName:   "lab",
		DeviceID:   "ESP32_AABBCC",
		DoorAccess: true,
	})
	require.NoError(t, err)

	m, err := s.Rooms().FindByName("lab")
	require.NoError(t, err)
	assert.Equal(t, "ESP32_AABBCC", m.DeviceID)
	assert.True(t, m.DoorAccess)
	assert.False(t, m.CreatedAt.IsZero())

	m, err = s.Rooms().FindByDeviceID("ESP32_AABBCC")
	require.NoError(t, err)
	assert.Equal(t, "lab", m.RoomName)

	_, err = s.Rooms().FindByName("does-not-exist")
	assert.Equal(t, storage.ErrNotFound, err)

	_, err = s.Rooms().FindByDeviceID("ESP32_FFFFFF")
	assert.Equal(t, storage.ErrNotFound, err)
}

func TestRoomStoreFindByDeviceIDIgnoresUnbound(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Rooms().Create(&model.Room{RoomName: "lobby"}))

	// A room without a bound device must never match the empty device ID.
	_, err := s.Rooms().FindByDeviceID("")
	assert.Equal(t, storage.ErrNotFound, err)
}

func TestRoomStoreUpdate(t *testing.T) {
	s := NewStore()

	m := &model.Room{RoomName: "lab", DoorAccess: false}
	require.NoError(t, s.Rooms().Create(m))
	createdAt := m.CreatedAt

	m.DoorAccess = true
	require.NoError(t, s.Rooms().Update(m))

	got, err := s.Rooms().FindByName("lab")
	require.NoError(t, err)
	assert.True(t, got.DoorAccess)
	assert.Equal(t, createdAt, got.CreatedAt)

	err = s.Rooms().Update(&model.Room{RoomName: "does-not-exist"})
	assert.Equal(t, storage.ErrNotFound, err)
}

func TestRoomStoreDelete(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Rooms().Create(&model.Room{RoomName: "lab"}))
	require.NoError(t, s.Rooms().Delete("lab"))

	_, err := s.Rooms().FindByName("lab")
	assert.Equal(t, storage.ErrNotFound, err)

	assert.Equal(t, storage.ErrNotFound, s.Rooms().Delete("lab"))
}

func TestRoomStoreFetchAll(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Rooms().Create(&model.Room{RoomName: "lab"}))
	require.NoError(t, s.Rooms().Create(&model.Room{RoomName: "lobby"}))

	all, err := s.Rooms().FetchAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "lab")
	assert.Contains(t, all, "lobby")
}

func TestAccessLogStoreOrderingAndLimit(t *testing.T) {
	s := NewStore()
	base := time.Now().Round(time.Second).UTC()

	for i := 0; i < 5; i++ {
		err := s.AccessLogs().Create(&model.AccessLog{
			ID:        fmt.Sprintf("id-%d", i),
			RoomName:  "lab",
			Action:    model.ActionTriggerSent,
			Outcome:   model.OutcomeSuccess,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.AccessLogs().Create(&model.AccessLog{
		RoomName: "lobby",
		Action:   model.ActionTriggerSent,
	}))

	logs, err := s.AccessLogs().FetchByRoom("lab", 3)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	// Most recent first, other rooms filtered out.
	assert.Equal(t, "id-4", logs[0].ID)
	assert.Equal(t, "id-3", logs[1].ID)
	assert.Equal(t, "id-2", logs[2].ID)

	logs, err = s.AccessLogs().FetchByRoom("lab", 0)
	require.NoError(t, err)
	assert.Len(t, logs, 5)
}

func TestAccessLogStoreDefaultsTimestamp(t *testing.T) {
	s := NewStore()

	m := &model.AccessLog{RoomName: "lab", Action: model.ActionTriggerSent}
	require.NoError(t, s.AccessLogs().Create(m))

	logs, err := s.AccessLogs().FetchByRoom("lab", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Timestamp.IsZero())
	assert.Equal(t, logs[0].CreatedAt, logs[0].Timestamp)
}
