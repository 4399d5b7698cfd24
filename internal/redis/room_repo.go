// Package redis backs the room store with Redis. Each room is a JSON
// blob under room:<id>, with a host:<connID> index for host lookups.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/danfishgold/pizza-party/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RoomRepository struct {
	client *redis.Client
	prefix string

	// Guest mutations are read-modify-write on the room blob. The server
	// runs as a single process, so a process-local lock is enough to
	// serialize them.
	mu sync.Mutex
}

func NewRoomRepository(client *redis.Client, prefix string) *RoomRepository {
	if prefix == "" {
		prefix = "pizza-party:"
	}
	return &RoomRepository{client: client, prefix: prefix}
}

func (r *RoomRepository) roomKey(roomID string) string { return r.prefix + "room:" + roomID }
func (r *RoomRepository) hostKey(connID string) string { return r.prefix + "host:" + connID }

func (r *RoomRepository) Insert(ctx context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.client.Get(ctx, r.hostKey(room.HostConnID)).Result(); err == nil {
		return domain.ErrAlreadyHost
	} else if !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis get host index: %w", err)
	}

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.roomKey(room.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx room: %w", err)
	}
	if !ok {
		return domain.ErrRoomExists
	}

	if err := r.client.Set(ctx, r.hostKey(room.HostConnID), room.ID, 0).Err(); err != nil {
		return fmt.Errorf("redis set host index: %w", err)
	}
	return nil
}

func (r *RoomRepository) Get(ctx context.Context, roomID string) (*domain.Room, error) {
	return r.get(ctx, roomID)
}

func (r *RoomRepository) get(ctx context.Context, roomID string) (*domain.Room, error) {
	data, err := r.client.Get(ctx, r.roomKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("redis get room: %w", err)
	}
	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("unmarshal room: %w", err)
	}
	return &room, nil
}

func (r *RoomRepository) put(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}
	return r.client.Set(ctx, r.roomKey(room.ID), data, 0).Err()
}

func (r *RoomRepository) Exists(ctx context.Context, roomID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.roomKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *RoomRepository) FindByHost(ctx context.Context, connID string) (*domain.Room, error) {
	roomID, err := r.client.Get(ctx, r.hostKey(connID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("redis get host index: %w", err)
	}
	return r.get(ctx, roomID)
}

func (r *RoomRepository) AddGuest(ctx context.Context, roomID string, g domain.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.get(ctx, roomID)
	if err != nil {
		return err
	}
	if room.HasGuestName(g.Name) {
		return domain.ErrNameTaken
	}
	if _, ok := room.GuestByConn(g.ConnID); ok {
		return domain.ErrAlreadyInRoom
	}
	room.Guests = append(room.Guests, g)
	return r.put(ctx, room)
}

func (r *RoomRepository) NameTaken(ctx context.Context, roomID, name string) (bool, error) {
	room, err := r.get(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room.HasGuestName(name), nil
}

func (r *RoomRepository) RemoveGuest(ctx context.Context, roomID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.get(ctx, roomID)
	if err != nil {
		return err
	}
	for i, g := range room.Guests {
		if g.ConnID == connID {
			room.Guests = append(room.Guests[:i], room.Guests[i+1:]...)
			return r.put(ctx, room)
		}
	}
	return domain.ErrNotInRoom
}

func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.get(ctx, roomID)
	if err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.roomKey(roomID), r.hostKey(room.HostConnID)).Err(); err != nil {
		return fmt.Errorf("redis del room: %w", err)
	}
	return nil
}
