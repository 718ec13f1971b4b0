package controlchannel

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel/websocket"
	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
	"github.com/AJITHPRASAD95/door1/pkg/storage/memory"
)

func newTestChannel(t *testing.T, store storage.Interface) (*Controller, *ControlChannel, *websocket.Driver) {
	t.Helper()

	ctrl := newTestController(store)
	driver := websocket.NewDriver(nil, make(chan struct{}, 1))
	cc := ctrl.NewControlChannel(driver)
	t.Cleanup(cc.Close)

	return ctrl, cc, driver
}

func nextOutbox(t *testing.T, driver *websocket.Driver) *websocket.OutboxMessage {
	t.Helper()

	select {
	case msg := <-driver.Outbox:
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected an outbound message")
		return nil
	}
}

func unmarshalEnvelope(t *testing.T, data []byte) []interface{} {
	t.Helper()

	var envelope []interface{}
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope
}

func TestControlChannelRegisterFlow(t *testing.T) {
	ctrl, cc, driver := newTestChannel(t, memory.NewStore())

	cc.HandleMessage([]byte(`[1, "ESP32_AB12", {"chip_id": "ab12", "ip": "10.0.0.9"}]`))

	msg := nextOutbox(t, driver)
	assert.Equal(t, websocket.FlagContinue, msg.Flag)

	envelope := unmarshalEnvelope(t, msg.Data)
	require.Len(t, envelope, 3)
	assert.Equal(t, float64(2), envelope[0])
	assert.Equal(t, "ok", envelope[1])

	sess, ok := ctrl.Registry().Lookup("ESP32_AB12")
	require.True(t, ok)
	assert.Equal(t, "ab12", sess.ChipID)
	assert.Equal(t, "10.0.0.9", sess.RemoteAddr)
	assert.Equal(t, model.RoomUnassigned, sess.RoomName)
}

func TestControlChannelReRegisterDoesNotBlock(t *testing.T) {
	ctrl, cc, driver := newTestChannel(t, memory.NewStore())

	reg := []byte(`[1, "ESP32_AB12", {}]`)
	cc.HandleMessage(reg)
	nextOutbox(t, driver)

	// A device re-registering over the same connection is valid traffic
	// and must be handled, not hang the inbox worker.
	done := make(chan struct{})
	go func() {
		cc.HandleMessage(reg)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second registration on the same connection did not complete")
	}

	msg := nextOutbox(t, driver)
	envelope := unmarshalEnvelope(t, msg.Data)
	assert.Equal(t, float64(2), envelope[0])

	assert.Equal(t, 1, ctrl.Registry().Len())
}

func TestControlChannelRejectsUnregisteredTraffic(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{name: "ping before registration", data: `[4]`},
		{name: "feedback before registration", data: `[20, "ESP32_AB12", "lab"]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, cc, driver := newTestChannel(t, memory.NewStore())

			cc.HandleMessage([]byte(tc.data))

			msg := nextOutbox(t, driver)
			assert.Equal(t, websocket.FlagCloseGracefully, msg.Flag)

			envelope := unmarshalEnvelope(t, msg.Data)
			require.Len(t, envelope, 3)
			assert.Equal(t, float64(3), envelope[0])
			assert.Equal(t, ErrReasonNotRegistered, envelope[1])
		})
	}
}

func TestControlChannelRegisterRequiresDeviceID(t *testing.T) {
	_, cc, driver := newTestChannel(t, memory.NewStore())

	cc.HandleMessage([]byte(`[1, ""]`))

	msg := nextOutbox(t, driver)
	assert.Equal(t, websocket.FlagCloseGracefully, msg.Flag)

	envelope := unmarshalEnvelope(t, msg.Data)
	assert.Equal(t, float64(3), envelope[0])
	assert.Equal(t, ErrReasonProtocolViolation, envelope[1])
}

func TestControlChannelPingPong(t *testing.T) {
	_, cc, driver := newTestChannel(t, memory.NewStore())

	cc.HandleMessage([]byte(`[1, "ESP32_AB12", {}]`))
	nextOutbox(t, driver)

	cc.HandleMessage([]byte(`[4]`))

	msg := nextOutbox(t, driver)
	assert.Equal(t, websocket.FlagContinue, msg.Flag)

	envelope := unmarshalEnvelope(t, msg.Data)
	assert.Equal(t, float64(5), envelope[0])
}

func TestControlChannelPingAfterClose(t *testing.T) {
	_, cc, driver := newTestChannel(t, memory.NewStore())

	cc.HandleMessage([]byte(`[1, "ESP32_AB12", {}]`))
	nextOutbox(t, driver)

	// The keep-alive watchdog is gone after close; a late ping must still
	// be answered without blocking the channel.
	cc.Close()
	cc.HandleMessage([]byte(`[4]`))

	msg := nextOutbox(t, driver)
	envelope := unmarshalEnvelope(t, msg.Data)
	assert.Equal(t, float64(5), envelope[0])
}

func TestControlChannelFeedback(t *testing.T) {
	store := memory.NewStore()
	_, cc, driver := newTestChannel(t, store)

	cc.HandleMessage([]byte(`[1, "ESP32_AB12", {}]`))
	nextOutbox(t, driver)

	cc.HandleMessage([]byte(`[20, "ESP32_AB12", "lab"]`))

	logs, err := store.AccessLogs().FetchByRoom("lab", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.ActionDoorOpenedFeedback, logs[0].Action)
}

func TestControlChannelInvalidPayload(t *testing.T) {
	_, cc, driver := newTestChannel(t, memory.NewStore())

	cc.HandleMessage([]byte(`garbage`))

	msg := nextOutbox(t, driver)
	assert.Equal(t, websocket.FlagTerminate, msg.Flag)
	assert.Nil(t, msg.Data)
}
