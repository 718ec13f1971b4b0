package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/AJITHPRASAD95/door1/pkg/model"
)

func newAccessLogStore(db *sqlx.DB) *accessLogStore {
	return &accessLogStore{
		db: db,
	}
}

type accessLogStore struct {
	db *sqlx.DB
}

type sqlDataAccessLog struct {
	ID        string    `db:"id"`
	RoomName  string    `db:"room_name"`
	Action    string    `db:"action"`
	Outcome   string    `db:"outcome"`
	Detail    string    `db:"detail"`
	Timestamp time.Time `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}

var sqlParamsAccessLog = []string{
	"id",
	"room_name",
	"action",
	"outcome",
	"detail",
	"timestamp",
	"created_at",
}

func (d *sqlDataAccessLog) Scan(m *model.AccessLog) error {
	createdAt := m.CreatedAt
	if m.CreatedAt.IsZero() {
		createdAt = time.Now().Round(time.Second).UTC()
	}

	timestamp := m.Timestamp
	if m.Timestamp.IsZero() {
		timestamp = createdAt
	}

	d.ID = m.ID
	d.RoomName = m.RoomName
	d.Action = m.Action
	d.Outcome = m.Outcome
	d.Detail = m.Detail
	d.Timestamp = timestamp
	d.CreatedAt = createdAt

	return nil
}

func (d *sqlDataAccessLog) Model() (*model.AccessLog, error) {
	m := &model.AccessLog{
		ID:        d.ID,
		RoomName:  d.RoomName,
		Action:    d.Action,
		Outcome:   d.Outcome,
		Detail:    d.Detail,
		Timestamp: d.Timestamp,
		CreatedAt: d.CreatedAt,
	}

	return m, nil
}

func (s *accessLogStore) FetchByRoom(roomName string, limit int) ([]model.AccessLog, error) {
	rows := make([]sqlDataAccessLog, 0)
	models := make([]model.AccessLog, 0)

	// A non-positive limit means no limit, same as the memory store.
	query := "SELECT * FROM access_logs WHERE room_name=$1 ORDER BY timestamp DESC"
	args := []interface{}{roomName}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	if err := s.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to fetch access logs")
	}

	for _, d := range rows {
		m, err := d.Model()
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert SQL data to access log model")
		}
		models = append(models, *m)
	}

	return models, nil
}

func (s *accessLogStore) Create(m *model.AccessLog) error {
	d := sqlDataAccessLog{}
	if err := d.Scan(m); err != nil {
		return errors.Wrap(err, "failed to convert access log model to SQL data")
	}

	query := fmt.Sprintf(
		"INSERT INTO access_logs (%s) VALUES (%s)",
		strings.Join(sqlParamsAccessLog, ", "),
		":"+strings.Join(sqlParamsAccessLog, ", :"),
	)
	if _, err := s.db.NamedExec(query, d); err != nil {
		return errors.Wrap(err, "failed to create access log")
	}

	return nil
}
