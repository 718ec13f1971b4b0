package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

type accessLogStore struct {
	store []model.AccessLog
	sync.RWMutex
}

func newAccessLogStore() *accessLogStore {
	return &accessLogStore{
		store: make([]model.AccessLog, 0),
	}
}

func (s *accessLogStore) FetchByRoom(roomName string, limit int) ([]model.AccessLog, error) {
	s.RLock()
	defer s.RUnlock()

	models := make([]model.AccessLog, 0)
	for _, m := range s.store {
		if m.RoomName == roomName {
			models = append(models, m)
		}
	}

	// Most recent first
	sort.Slice(models, func(i, j int) bool {
		return models[i].Timestamp.After(models[j].Timestamp)
	})

	if limit > 0 && len(models) > limit {
		models = models[:limit]
	}

	return models, nil
}

func (s *accessLogStore) Create(m *model.AccessLog) error {
	s.Lock()
	defer s.Unlock()

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	if m.Timestamp.IsZero() {
		m.Timestamp = m.CreatedAt
	}

	s.store = append(s.store, *m)

	return nil
}
