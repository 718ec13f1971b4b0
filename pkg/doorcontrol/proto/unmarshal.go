package proto

import (
	"encoding/json"
	"fmt"
)

func unmarshalMessageType(v interface{}) (MessageType, error) {
	msgTypes := map[int]MessageType{
		1:  MessageTypeRegister,
		2:  MessageTypeRegistered,
		3:  MessageTypeAbort,
		4:  MessageTypePing,
		5:  MessageTypePong,
		10: MessageTypeTrigger,
		20: MessageTypeFeedback}

	i, ok := v.(float64)
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("doorcontrol: invalid message type given")
	}

	msgType, ok := msgTypes[int(i)]
	if !ok {
		return MessageTypeInvalid, fmt.Errorf("doorcontrol: unknown message type given")
	}

	return msgType, nil
}

func UnmarshalMessage(data []byte) (MessageType, interface{}, error) {
	var envelope []interface{}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return MessageTypeInvalid, nil, fmt.Errorf("doorcontrol: invalid message data: %s", err.Error())
	}

	if len(envelope) < 1 {
		return MessageTypeInvalid, nil, fmt.Errorf("doorcontrol: message does not contain a message type")
	}

	msgType, err := unmarshalMessageType(envelope[0])
	if err != nil {
		return msgType, nil, err
	}

	switch msgType {
	case MessageTypeRegister:
		return unmarshalRegisterMessage(envelope)
	case MessageTypePing:
		return unmarshalPingMessage(envelope)
	case MessageTypePong:
		return unmarshalPongMessage(envelope)
	case MessageTypeTrigger:
		return unmarshalTriggerMessage(envelope)
	case MessageTypeFeedback:
		return unmarshalFeedbackMessage(envelope)
	case MessageTypeRegistered, MessageTypeAbort:
		// Server-to-device messages are never expected on the inbound path.
		return MessageTypeInvalid, nil, fmt.Errorf("doorcontrol: unexpected server message type %s", msgType)
	}

	// This return should never be reached
	return MessageTypeInvalid, nil, fmt.Errorf("an unexpected error happened during unmarshalling the message")
}

func unmarshalRegisterMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 2 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete register message")
	}

	deviceID, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("register message contains invalid device ID type")
	}

	var details interface{}
	if len(envelope) == 3 {
		details = envelope[2]
	}

	return MessageTypeRegister, RegisterMessage{
		DeviceID: deviceID,
		Details:  details,
	}, nil
}

func unmarshalPingMessage(envelope []interface{}) (MessageType, interface{}, error) {
	var details interface{}
	if len(envelope) == 2 {
		details = envelope[1]
	}

	return MessageTypePing, PingMessage{
		Details: details,
	}, nil
}

func unmarshalPongMessage(envelope []interface{}) (MessageType, interface{}, error) {
	var details interface{}
	if len(envelope) == 2 {
		details = envelope[1]
	}

	return MessageTypePong, PongMessage{
		Details: details,
	}, nil
}

func unmarshalTriggerMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 4 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete trigger message")
	}

	roomName, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("trigger message contains invalid room name type")
	}

	durationMs, ok := envelope[2].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("trigger message contains invalid duration type")
	}

	timestamp, ok := envelope[3].(float64)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("trigger message contains invalid timestamp type")
	}

	return MessageTypeTrigger, TriggerMessage{
		RoomName:   roomName,
		DurationMs: int(durationMs),
		Timestamp:  int64(timestamp),
	}, nil
}

func unmarshalFeedbackMessage(envelope []interface{}) (MessageType, interface{}, error) {
	if len(envelope) < 3 {
		return MessageTypeInvalid, nil, fmt.Errorf("incomplete feedback message")
	}

	deviceID, ok := envelope[1].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("feedback message contains invalid device ID type")
	}

	roomName, ok := envelope[2].(string)
	if !ok {
		return MessageTypeInvalid, nil, fmt.Errorf("feedback message contains invalid room name type")
	}

	var details interface{}
	if len(envelope) == 4 {
		details = envelope[3]
	}

	return MessageTypeFeedback, FeedbackMessage{
		DeviceID: deviceID,
		RoomName: roomName,
		Details:  details,
	}, nil
}
