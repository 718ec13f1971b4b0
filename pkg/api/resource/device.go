package resource

import (
	"time"

	"github.com/AJITHPRASAD95/door1/pkg/doorcontrol/controlchannel"
)

type DeviceResource struct {
	DeviceID     string    `json:"deviceId"`
	ChipID       string    `json:"chipId,omitempty"`
	RoomName     string    `json:"room"`
	RemoteAddr   string    `json:"remoteAddr"`
	RegisteredAt time.Time `json:"registeredAt"`
	LastSeenAt   time.Time `json:"lastSeenAt"`
}

type DeviceListResource struct {
	Members []*DeviceResource `json:"members"`
	Count   int               `json:"count"`
}

func NewDevice(sess *controlchannel.Session) (out *DeviceResource) {
	out = &DeviceResource{
		DeviceID:     sess.DeviceID,
		ChipID:       sess.ChipID,
		RoomName:     sess.RoomName,
		RemoteAddr:   sess.RemoteAddr,
		RegisteredAt: sess.RegisteredAt,
		LastSeenAt:   sess.LastSeenAt,
	}

	return // out
}

// NewDeviceList builds the roster resource from a registry snapshot. The
// snapshot is already ordered by registration time.
func NewDeviceList(sessions []controlchannel.Session) (out *DeviceListResource) {
	out = &DeviceListResource{
		Members: make([]*DeviceResource, 0, len(sessions)),
	}

	for i := range sessions {
		out.Members = append(out.Members, NewDevice(&sessions[i]))
	}
	out.Count = len(out.Members)

	return // out
}
