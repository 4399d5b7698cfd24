package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

// New creates a pgx pool from the DSN and verifies connectivity.
func New(ctx context.Context, dsn string) (*DB, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// EnsureSchema creates the room tables when they are missing. Host and
// guest-name uniqueness live in the schema so concurrent inserts cannot
// slip past the application-level checks.
func (db *DB) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS rooms (
		id           text PRIMARY KEY,
		host_conn_id text NOT NULL,
		config       jsonb NOT NULL DEFAULT 'null',
		created_at   timestamptz NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS rooms_host_conn_idx ON rooms (host_conn_id);
	CREATE TABLE IF NOT EXISTS room_guests (
		room_id   text NOT NULL REFERENCES rooms (id) ON DELETE CASCADE,
		conn_id   text NOT NULL,
		name      text NOT NULL,
		payload   jsonb NOT NULL DEFAULT 'null',
		joined_at timestamptz NOT NULL DEFAULT now(),
		PRIMARY KEY (room_id, conn_id),
		CONSTRAINT room_guests_name_key UNIQUE (room_id, name)
	);`
	_, err := db.Pool.Exec(ctx, ddl)
	return err
}
