package model

import "time"

// RoomUnassigned is the sentinel room name for devices that registered
// without a room claiming their device ID.
const RoomUnassigned = "unassigned"

// Room is a model of the persistency layer
type Room struct {
	RoomName     string
	DeviceID     string
	DoorAccess   bool
	LastAccessed time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
