package storage

import "github.com/AJITHPRASAD95/door1/pkg/model"

// Interface is implemented by the storage
type Interface interface {
	Rooms() RoomStore
	AccessLogs() AccessLogStore
}

// RoomStore is responsible for managing the Room model
type RoomStore interface {
	FetchAll() (map[string]model.Room, error)
	FindByName(name string) (*model.Room, error)
	FindByDeviceID(deviceID string) (*model.Room, error)
	Create(m *model.Room) error
	Update(m *model.Room) error
	Delete(name string) error
}

// AccessLogStore is responsible for managing the AccessLog model.
// Records are append-only; there is no update or delete.
type AccessLogStore interface {
	FetchByRoom(roomName string, limit int) ([]model.AccessLog, error)
	Create(m *model.AccessLog) error
}
