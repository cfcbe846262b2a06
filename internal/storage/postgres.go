package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores device keys as rows of device_storage
// (see migrations/001_device_storage.sql).
type Postgres struct {
	db       *pgxpool.Pool
	deviceID string
}

func NewPostgres(db *pgxpool.Pool, deviceID string) *Postgres {
	return &Postgres{db: db, deviceID: deviceID}
}

// PostgresFactory opens a Postgres-backed KV per device.
func PostgresFactory(db *pgxpool.Pool) Factory {
	return func(deviceID string) KV { return NewPostgres(db, deviceID) }
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := p.db.QueryRow(ctx,
		`SELECT value FROM device_storage WHERE device_id=$1 AND key=$2`,
		p.deviceID, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO device_storage (device_id,key,value,updated_at) VALUES ($1,$2,$3,NOW())
		 ON CONFLICT (device_id,key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`,
		p.deviceID, key, value)
	return err
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx,
		`DELETE FROM device_storage WHERE device_id=$1 AND key=$2`, p.deviceID, key)
	return err
}

func (p *Postgres) Clear(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `DELETE FROM device_storage WHERE device_id=$1`, p.deviceID)
	return err
}
