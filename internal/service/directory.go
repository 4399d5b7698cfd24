package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/danfishgold/pizza-party/internal/domain"
)

// RoomStore is the durable collection of room records. The directory is
// its sole writer. Implementations: internal/postgres, internal/redis,
// internal/memory.
type RoomStore interface {
	// Insert stores a new room, failing with domain.ErrRoomExists when the
	// id is already taken and domain.ErrAlreadyHost when the host
	// connection already owns a room.
	Insert(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, roomID string) (*domain.Room, error)
	Exists(ctx context.Context, roomID string) (bool, error)
	// FindByHost returns the room hosted by the connection, or
	// domain.ErrRoomNotFound.
	FindByHost(ctx context.Context, connID string) (*domain.Room, error)
	// AddGuest appends a guest, failing with domain.ErrNameTaken when the
	// name is already used in the room.
	AddGuest(ctx context.Context, roomID string, g domain.Guest) error
	NameTaken(ctx context.Context, roomID, name string) (bool, error)
	RemoveGuest(ctx context.Context, roomID, connID string) error
	Delete(ctx context.Context, roomID string) error
}

// Directory owns room-id allocation and membership bookkeeping on top of
// the store.
type Directory struct {
	store    RoomStore
	idDigits int
	drawID   func() string
}

func NewDirectory(store RoomStore, idDigits int) *Directory {
	if idDigits <= 0 {
		idDigits = 2
	}
	d := &Directory{store: store, idDigits: idDigits}
	d.drawID = d.randomID
	return d
}

// SetDrawFunc replaces the room-id draw used by CreateRoom. Tests use it
// to make allocation deterministic.
func (d *Directory) SetDrawFunc(fn func() string) {
	if fn != nil {
		d.drawID = fn
	}
}

// randomID draws a zero-padded numeric code, e.g. "07" for two digits.
func (d *Directory) randomID() string {
	max := 1
	for i := 0; i < d.idDigits; i++ {
		max *= 10
	}
	return fmt.Sprintf("%0*d", d.idDigits, rand.IntN(max))
}

// CreateRoom allocates a collision-free room id and stores a new room
// hosted by connID. Ids released by destroyed rooms may be handed out
// again.
func (d *Directory) CreateRoom(ctx context.Context, connID string, config json.RawMessage) (string, error) {
	if _, err := d.store.FindByHost(ctx, connID); err == nil {
		return "", domain.ErrAlreadyHost
	} else if !errors.Is(err, domain.ErrRoomNotFound) {
		return "", fmt.Errorf("find by host: %w", err)
	}

	for {
		room := &domain.Room{
			ID:         d.drawID(),
			HostConnID: connID,
			Config:     config,
			CreatedAt:  time.Now(),
		}
		err := d.store.Insert(ctx, room)
		if err == nil {
			return room.ID, nil
		}
		if errors.Is(err, domain.ErrRoomExists) {
			continue // id collision: redraw
		}
		return "", fmt.Errorf("insert room: %w", err)
	}
}

// JoinRoom validates the join and appends a guest record. The returned
// room carries the stored config (for the join response) and the host
// connection id (for the guest-joined notification).
func (d *Directory) JoinRoom(ctx context.Context, connID, roomID, name string, user json.RawMessage) (*domain.Room, error) {
	room, err := d.store.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	g := domain.Guest{
		ConnID:   connID,
		Name:     name,
		Payload:  user,
		JoinedAt: time.Now(),
	}
	if err := d.store.AddGuest(ctx, roomID, g); err != nil {
		return nil, err
	}

	room.Guests = append(room.Guests, g)
	return room, nil
}

func (d *Directory) GetRoom(ctx context.Context, roomID string) (*domain.Room, error) {
	return d.store.Get(ctx, roomID)
}

func (d *Directory) RoomExists(ctx context.Context, roomID string) (bool, error) {
	return d.store.Exists(ctx, roomID)
}

func (d *Directory) IsHost(ctx context.Context, connID string) (bool, error) {
	_, err := d.store.FindByHost(ctx, connID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Directory) NameTaken(ctx context.Context, roomID, name string) (bool, error) {
	return d.store.NameTaken(ctx, roomID, name)
}

// RemoveRoom deletes the room and every guest record in it.
func (d *Directory) RemoveRoom(ctx context.Context, roomID string) error {
	return d.store.Delete(ctx, roomID)
}

func (d *Directory) RemoveGuest(ctx context.Context, roomID, connID string) error {
	return d.store.RemoveGuest(ctx, roomID, connID)
}
