package resource

import (
	"time"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

type AccessLogResource struct {
	ID        string    `json:"id"`
	RoomName  string    `json:"roomName"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type AccessLogListResource struct {
	Members []*AccessLogResource `json:"members"`
}

func NewAccessLog(m *model.AccessLog) (out *AccessLogResource) {
	out = &AccessLogResource{
		ID:        m.ID,
		RoomName:  m.RoomName,
		Action:    m.Action,
		Outcome:   m.Outcome,
		Detail:    m.Detail,
		Timestamp: m.Timestamp,
	}

	return // out
}

// NewAccessLogList keeps the store's most-recent-first ordering.
func NewAccessLogList(models []model.AccessLog) (out *AccessLogListResource) {
	out = &AccessLogListResource{
		Members: make([]*AccessLogResource, 0, len(models)),
	}

	for i := range models {
		out.Members = append(out.Members, NewAccessLog(&models[i]))
	}

	return // out
}
