package memory

import (
	"sync"
	"time"

	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

type roomStore struct {
	store map[string]model.Room
	sync.RWMutex
}

func newRoomStore() *roomStore {
	return &roomStore{
		store: make(map[string]model.Room),
	}
}

func (s *roomStore) FetchAll() (map[string]model.Room, error) {
	s.RLock()
	defer s.RUnlock()
	models := make(map[string]model.Room, len(s.store))

	for name, m := range s.store {
		models[name] = m
	}

	return models, nil
}

func (s *roomStore) FindByName(name string) (*model.Room, error) {
	s.RLock()
	defer s.RUnlock()
	if m, ok := s.store[name]; ok {
		return &m, nil
	}

	return nil, storage.ErrNotFound
}

func (s *roomStore) FindByDeviceID(deviceID string) (*model.Room, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.store {
		if m.DeviceID != "" && m.DeviceID == deviceID {
			return &m, nil
		}
	}

	return nil, storage.ErrNotFound
}

func (s *roomStore) Create(m *model.Room) error {
	s.Lock()
	defer s.Unlock()

	m.CreatedAt = time.Now().Round(time.Second).UTC()
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.RoomName] = *m

	return nil
}

func (s *roomStore) Update(m *model.Room) error {
	s.Lock()
	defer s.Unlock()

	existing, ok := s.store[m.RoomName]
	if !ok {
		return storage.ErrNotFound
	}

	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	s.store[m.RoomName] = *m

	return nil
}

func (s *roomStore) Delete(name string) error {
	s.Lock()
	defer s.Unlock()

	_, ok := s.store[name]
	if !ok {
		return storage.ErrNotFound
	}

	delete(s.store, name)

	return nil
}
