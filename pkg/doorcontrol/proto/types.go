package proto

type MessageType int

const (
	MessageTypeInvalid    MessageType = 0
	MessageTypeRegister   MessageType = 1
	MessageTypeRegistered MessageType = 2
	MessageTypeAbort      MessageType = 3
	MessageTypePing       MessageType = 4
	MessageTypePong       MessageType = 5
	MessageTypeTrigger    MessageType = 10
	MessageTypeFeedback   MessageType = 20
)

func (msgType MessageType) String() string {
	names := map[MessageType]string{
		MessageTypeRegister:   "REGISTER",
		MessageTypeRegistered: "REGISTERED",
		MessageTypeAbort:      "ABORT",
		MessageTypePing:       "PING",
		MessageTypePong:       "PONG",
		MessageTypeTrigger:    "TRIGGER",
		MessageTypeFeedback:   "FEEDBACK"}

	msgTypeName, ok := names[msgType]
	if !ok {
		return ""
	}

	return msgTypeName
}

// RegisterMessage is sent by a device right after the websocket connection
// is established. The device ID is the stable logical identity, details
// carry provisioning info such as the chip ID and the device's own IP.
type RegisterMessage struct {
	DeviceID string
	Details  interface{}
}

type RegisteredMessage struct {
	Status  string
	Details interface{}
}

type AbortMessage struct {
	Reason  string
	Details interface{}
}

type PingMessage struct {
	Details interface{}
}

type PongMessage struct {
	Details interface{}
}

// TriggerMessage carries one actuation command to a device. DurationMs is
// how long the relay holds the door open.
type TriggerMessage struct {
	RoomName   string
	DurationMs int
	Timestamp  int64
}

// FeedbackMessage is reported by a device after it actuated the door.
// It is not correlated to the trigger that caused it.
type FeedbackMessage struct {
	DeviceID string
	RoomName string
	Details  interface{}
}
