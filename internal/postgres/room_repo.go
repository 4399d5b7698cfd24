package postgres

import (
	"context"
	"errors"

	"github.com/danfishgold/pizza-party/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Insert(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (id, host_conn_id, config)
		VALUES ($1, $2, $3)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, room.ID, room.HostConnID, room.Config).Scan(&room.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "rooms_host_conn_idx" {
				return domain.ErrAlreadyHost
			}
			return domain.ErrRoomExists
		}
		return err
	}
	return nil
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, host_conn_id, config, created_at FROM rooms WHERE id=$1`
	err := r.db.QueryRow(ctx, query, roomID).
		Scan(&rm.ID, &rm.HostConnID, &rm.Config, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if err := r.loadGuests(ctx, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID).Scan(&exists)
	return exists, err
}

func (r *RoomRepository) FindByHost(ctx context.Context, connID string) (*domain.Room, error) {
	var rm domain.Room
	query := `SELECT id, host_conn_id, config, created_at FROM rooms WHERE host_conn_id=$1`
	err := r.db.QueryRow(ctx, query, connID).
		Scan(&rm.ID, &rm.HostConnID, &rm.Config, &rm.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	if err := r.loadGuests(ctx, &rm); err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *RoomRepository) AddGuest(ctx context.Context, roomID string, g domain.Guest) error {
	query := `
		INSERT INTO room_guests (room_id, conn_id, name, payload)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.Exec(ctx, query, roomID, g.ConnID, g.Name, g.Payload)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23503": // room row gone
				return domain.ErrRoomNotFound
			case "23505":
				if pgErr.ConstraintName == "room_guests_name_key" {
					return domain.ErrNameTaken
				}
				return domain.ErrAlreadyInRoom
			}
		}
		return err
	}
	return nil
}

func (r *RoomRepository) NameTaken(ctx context.Context, roomID, name string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM room_guests WHERE room_id=$1 AND name=$2)`,
		roomID, name).Scan(&taken)
	return taken, err
}

func (r *RoomRepository) RemoveGuest(ctx context.Context, roomID, connID string) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM room_guests WHERE room_id=$1 AND conn_id=$2`, roomID, connID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotInRoom
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) loadGuests(ctx context.Context, rm *domain.Room) error {
	rows, err := r.db.Query(ctx,
		`SELECT conn_id, name, payload, joined_at FROM room_guests WHERE room_id=$1 ORDER BY joined_at ASC`,
		rm.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g domain.Guest
		if err := rows.Scan(&g.ConnID, &g.Name, &g.Payload, &g.JoinedAt); err != nil {
			return err
		}
		rm.Guests = append(rm.Guests, g)
	}
	return rows.Err()
}
