package controlchannel

import "fmt"

const ErrReasonNotRegistered string = "ERR_NOT_REGISTERED"
const ErrReasonProtocolViolation string = "ERR_PROTOCOL_VIOLATION"

// RoomNotFoundError reports a trigger against a room the store does not
// know.
type RoomNotFoundError struct {
	RoomName string
}

func NewRoomNotFoundError(roomName string) error {
	return &RoomNotFoundError{RoomName: roomName}
}

func (e *RoomNotFoundError) Error() string {
	return fmt.Sprintf("room '%s' not found", e.RoomName)
}

func IsRoomNotFoundError(e error) bool {
	_, ok := e.(*RoomNotFoundError)
	return ok
}

// AccessDeniedError reports a trigger against a room whose door access
// flag is disabled.
type AccessDeniedError struct {
	RoomName string
}

func NewAccessDeniedError(roomName string) error {
	return &AccessDeniedError{RoomName: roomName}
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("door access for room '%s' is disabled", e.RoomName)
}

func IsAccessDeniedError(e error) bool {
	_, ok := e.(*AccessDeniedError)
	return ok
}

// TargetNotFoundError reports that no live session matched the requested
// target. KnownDevices carries the roster at resolution time.
type TargetNotFoundError struct {
	Target       string
	KnownDevices []string
}

func NewTargetNotFoundError(target string, knownDevices []string) error {
	return &TargetNotFoundError{
		Target:       target,
		KnownDevices: knownDevices,
	}
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("device '%s' is not connected (known: %v)", e.Target, e.KnownDevices)
}

func IsTargetNotFoundError(e error) bool {
	_, ok := e.(*TargetNotFoundError)
	return ok
}

// NoDevicesConnectedError reports a trigger while the registry is empty.
type NoDevicesConnectedError struct{}

func NewNoDevicesConnectedError() error {
	return &NoDevicesConnectedError{}
}

func (e *NoDevicesConnectedError) Error() string {
	return "no devices connected"
}

func IsNoDevicesConnectedError(e error) bool {
	_, ok := e.(*NoDevicesConnectedError)
	return ok
}

// DispatchFailedError reports that every send attempt of a dispatch
// errored at the transport level.
type DispatchFailedError struct {
	Target   string
	Attempts int
}

func NewDispatchFailedError(target string, attempts int) error {
	return &DispatchFailedError{
		Target:   target,
		Attempts: attempts,
	}
}

func (e *DispatchFailedError) Error() string {
	return fmt.Sprintf("dispatch to '%s' failed on all %d send attempts", e.Target, e.Attempts)
}

func IsDispatchFailedError(e error) bool {
	_, ok := e.(*DispatchFailedError)
	return ok
}
