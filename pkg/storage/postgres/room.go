package postgres

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/AJITHPRASAD95/door1/pkg/model"
	"github.com/AJITHPRASAD95/door1/pkg/storage"
)

func newRoomStore(db *sqlx.DB) *roomStore {
	return &roomStore{
		db: db,
	}
}

type roomStore struct {
	db *sqlx.DB
}

type sqlDataRoom struct {
	RoomName     string       `db:"room_name"`
	DeviceID     string       `db:"device_id"`
	DoorAccess   bool         `db:"door_access"`
	LastAccessed sql.NullTime `db:"last_accessed"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

var sqlParamsRoom = []string{
	"room_name",
	"device_id",
	"door_access",
	"last_accessed",
	"created_at",
	"updated_at",
}

func (d *sqlDataRoom) Scan(m *model.Room) error {
	var createdAt, updatedAt = m.CreatedAt, m.UpdatedAt

	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	if m.UpdatedAt.IsZero() {
		updatedAt = time.Now().Round(time.Second).UTC()
	}

	d.RoomName = m.RoomName
	d.DeviceID = m.DeviceID
	d.DoorAccess = m.DoorAccess
	d.LastAccessed = sql.NullTime{Time: m.LastAccessed, Valid: !m.LastAccessed.IsZero()}
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return nil
}

func (d *sqlDataRoom) Model() (*model.Room, error) {
	m := &model.Room{
		RoomName:   d.RoomName,
		DeviceID:   d.DeviceID,
		DoorAccess: d.DoorAccess,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}

	if d.LastAccessed.Valid {
		m.LastAccessed = d.LastAccessed.Time
	}

	return m, nil
}

func (s *roomStore) FetchAll() (map[string]model.Room, error) {
	rows := make([]sqlDataRoom, 0)
	models := make(map[string]model.Room)

	query := "SELECT * FROM rooms"
	if err := s.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "failed to fetch all rooms")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to room model")
		}
		models[m.RoomName] = *m
	}

	return models, nil
}

func (s *roomStore) FindByName(name string) (*model.Room, error) {
	d := sqlDataRoom{}

	query := "SELECT * FROM rooms WHERE room_name=$1"
	if err := s.db.Get(&d, query, name); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find room by name")
	}

	return d.Model()
}

func (s *roomStore) FindByDeviceID(deviceID string) (*model.Room, error) {
	d := sqlDataRoom{}

	query := "SELECT * FROM rooms WHERE device_id=$1 AND device_id<>''"
	if err := s.db.Get(&d, query, deviceID); err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to find room by device ID")
	}

	return d.Model()
}

func (s *roomStore) Create(m *model.Room) error {
	d := sqlDataRoom{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert room model to SQL data")
	}

	query := fmt.Sprintf(
		"INSERT INTO rooms (%s) VALUES (%s)",
		strings.Join(sqlParamsRoom, ", "),
		":"+strings.Join(sqlParamsRoom, ", :"),
	)
	if _, err := s.db.NamedExec(query, d); err != nil {
		return errors.Wrap(err, "failed to create room")
	}

	return nil
}

func (s *roomStore) Update(m *model.Room) error {
	if _, err := s.FindByName(m.RoomName); err != nil {
		return err
	}

	// Set the UpdatedAt date to now
	m.UpdatedAt = time.Now().Round(time.Second).UTC()

	d := sqlDataRoom{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert room model to SQL data")
	}

	var queryParams []string
	for _, param := range sqlParamsRoom {
		if param == "room_name" || param == "created_at" {
			continue
		}
		queryParams = append(queryParams, fmt.Sprintf("%s=:%s", param, param))
	}
	query := fmt.Sprintf("UPDATE rooms SET %s WHERE room_name=:room_name", strings.Join(queryParams, ", "))
	if _, err := s.db.NamedExec(query, d); err != nil {
		return errors.Wrap(err, "failed to update room")
	}

	return nil
}

func (s *roomStore) Delete(name string) error {
	query := "DELETE FROM rooms WHERE room_name=$1"
	if _, err := s.db.Exec(query, name); err != nil {
		return errors.Wrap(err, "failed to delete room")
	}

	return nil
}
