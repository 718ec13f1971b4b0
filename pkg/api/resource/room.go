package resource

import (
	"fmt"
	"sort"
	"time"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

type RoomResource struct {
	RoomName     string     `json:"roomName"`
	DeviceID     string     `json:"deviceId,omitempty"`
	DoorAccess   bool       `json:"doorAccess"`
	LastAccessed *time.Time `json:"lastAccessed,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type RoomListResource struct {
	Members []*RoomResource `json:"members"`
}

// RoomAccessResource is the PATCH body toggling the authorization flag.
type RoomAccessResource struct {
	DoorAccess bool `json:"doorAccess"`
}

func NewRoom(m *model.Room) (out *RoomResource) {
	out = &RoomResource{
		RoomName:   m.RoomName,
		DeviceID:   m.DeviceID,
		DoorAccess: m.DoorAccess,
	}

	if !m.LastAccessed.IsZero() {
		out.LastAccessed = &time.Time{}
		*out.LastAccessed = m.LastAccessed.Round(time.Second)
	}
	if !m.CreatedAt.IsZero() {
		out.CreatedAt = &time.Time{}
		*out.CreatedAt = m.CreatedAt.Round(time.Second)
	}
	if !m.UpdatedAt.IsZero() {
		out.UpdatedAt = &time.Time{}
		*out.UpdatedAt = m.UpdatedAt.Round(time.Second)
	}

	return // out
}

func NewRoomList(m map[string]model.Room) (out *RoomListResource) {
	out = &RoomListResource{
		Members: make([]*RoomResource, 0),
	}

	for _, elem := range m {
		out.Members = append(out.Members, NewRoom(&elem))
	}

	// Default sort by room name
	sort.Slice(out.Members, func(i, j int) bool {
		return out.Members[i].RoomName < out.Members[j].RoomName
	})

	return // out
}

func ValidateRoom(r *RoomResource) (m *model.Room, err error) {
	if r.RoomName == "" {
		return nil, fmt.Errorf("roomName is required")
	}

	m = &model.Room{
		RoomName:   r.RoomName,
		DeviceID:   r.DeviceID,
		DoorAccess: r.DoorAccess,
	}

	return m, nil
}
