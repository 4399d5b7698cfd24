// Package memory is an in-process room store for dev runs and tests.
// Rooms do not survive a restart; use the postgres or redis backend for
// that.
package memory

import (
	"context"
	"sync"

	"github.com/danfishgold/pizza-party/internal/domain"
)

type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
	hosts map[string]string // host conn id -> room id
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[string]*domain.Room),
		hosts: make(map[string]string),
	}
}

func (r *RoomRepository) Insert(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room.ID]; ok {
		return domain.ErrRoomExists
	}
	if _, ok := r.hosts[room.HostConnID]; ok {
		return domain.ErrAlreadyHost
	}
	r.rooms[room.ID] = clone(room)
	r.hosts[room.HostConnID] = room.ID
	return nil
}

func (r *RoomRepository) Get(_ context.Context, roomID string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return clone(room), nil
}

func (r *RoomRepository) Exists(_ context.Context, roomID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[roomID]
	return ok, nil
}

func (r *RoomRepository) FindByHost(_ context.Context, connID string) (*domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomID, ok := r.hosts[connID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return clone(r.rooms[roomID]), nil
}

func (r *RoomRepository) AddGuest(_ context.Context, roomID string, g domain.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if room.HasGuestName(g.Name) {
		return domain.ErrNameTaken
	}
	if _, ok := room.GuestByConn(g.ConnID); ok {
		return domain.ErrAlreadyInRoom
	}
	room.Guests = append(room.Guests, g)
	return nil
}

func (r *RoomRepository) NameTaken(_ context.Context, roomID, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return false, domain.ErrRoomNotFound
	}
	return room.HasGuestName(name), nil
}

func (r *RoomRepository) RemoveGuest(_ context.Context, roomID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	for i, g := range room.Guests {
		if g.ConnID == connID {
			room.Guests = append(room.Guests[:i], room.Guests[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotInRoom
}

func (r *RoomRepository) Delete(_ context.Context, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	delete(r.hosts, room.HostConnID)
	delete(r.rooms, roomID)
	return nil
}

// clone keeps callers from aliasing the stored guest slice.
func clone(room *domain.Room) *domain.Room {
	cp := *room
	cp.Guests = append([]domain.Guest(nil), room.Guests...)
	return &cp
}
