package memory

import "github.com/AJITHPRASAD95/door1/pkg/storage"

// Store contains all memory-based sub-stores for managing the persistent models
type store struct {
	rooms      *roomStore
	accessLogs *accessLogStore
}

// NewStore creates a new memory-based Storage interface
func NewStore() storage.Interface {
	return &store{
		rooms:      newRoomStore(),
		accessLogs: newAccessLogStore(),
	}
}

// Rooms returns a sub-store for managing the Room model
func (s *store) Rooms() storage.RoomStore {
	return s.rooms
}

// AccessLogs returns a sub-store for managing the AccessLog model
func (s *store) AccessLogs() storage.AccessLogStore {
	return s.accessLogs
}
