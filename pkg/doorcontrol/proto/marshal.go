package proto

import (
	"encoding/json"
)

func (m RegisterMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeRegister)
	envelope[1] = m.DeviceID
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m RegisteredMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeRegistered)
	envelope[1] = m.Status
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m AbortMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 3)
	envelope[0] = int(MessageTypeAbort)
	envelope[1] = m.Reason
	envelope[2] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PingMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePing)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m PongMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 2)
	envelope[0] = int(MessageTypePong)
	envelope[1] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func (m TriggerMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 4)
	envelope[0] = int(MessageTypeTrigger)
	envelope[1] = m.RoomName
	envelope[2] = m.DurationMs
	envelope[3] = m.Timestamp

	return json.Marshal(envelope)
}

func (m FeedbackMessage) Marshal() ([]byte, error) {
	envelope := make([]interface{}, 4)
	envelope[0] = int(MessageTypeFeedback)
	envelope[1] = m.DeviceID
	envelope[2] = m.RoomName
	envelope[3] = ensureEmptyDictIfNil(m.Details)

	return json.Marshal(envelope)
}

func MarshalNewRegisteredMessage(status string, details interface{}) ([]byte, error) {
	msg := RegisteredMessage{
		Status:  status,
		Details: details,
	}
	return msg.Marshal()
}

func MarshalNewAbortMessage(reason string, details interface{}) ([]byte, error) {
	msg := AbortMessage{
		Reason:  reason,
		Details: details,
	}
	return msg.Marshal()
}

func MarshalNewPongMessage() ([]byte, error) {
	msg := PongMessage{}
	return msg.Marshal()
}

func MarshalNewTriggerMessage(roomName string, durationMs int, timestamp int64) ([]byte, error) {
	msg := TriggerMessage{
		RoomName:   roomName,
		DurationMs: durationMs,
		Timestamp:  timestamp,
	}
	return msg.Marshal()
}

func ensureEmptyDictIfNil(v interface{}) interface{} {
	if v == nil {
		return make(map[string]interface{})
	}
	return v
}
