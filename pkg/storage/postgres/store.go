package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

// store contains all PostgreSQL based sub-stores for managing the models
type store struct {
	rooms      *roomStore
	accessLogs *accessLogStore
}

// NewStore creates a new PostgreSQL based Storage interface
func NewStore(db *sqlx.DB) storage.Interface {
	return &store{
		rooms:      newRoomStore(db),
		accessLogs: newAccessLogStore(db),
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
