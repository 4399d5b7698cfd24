package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/danfishgold/pizza-party/internal/domain"
	"github.com/danfishgold/pizza-party/internal/memory"
)

func seqDraw(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func newTestDirectory(draws ...string) *Directory {
	d := NewDirectory(memory.NewRoomRepository(), 2)
	if len(draws) > 0 {
		d.SetDrawFunc(seqDraw(draws...))
	}
	return d
}

func TestCreateRoom(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("82")

	cfg := json.RawMessage(`{"difficulty":"easy"}`)
	roomID, err := d.CreateRoom(ctx, "host-1", cfg)
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if roomID != "82" {
		t.Fatalf("expected room id 82, got %s", roomID)
	}

	exists, err := d.RoomExists(ctx, "82")
	if err != nil || !exists {
		t.Fatalf("expected room 82 to exist, exists=%v err=%v", exists, err)
	}
	isHost, err := d.IsHost(ctx, "host-1")
	if err != nil || !isHost {
		t.Fatalf("expected host-1 to be host, isHost=%v err=%v", isHost, err)
	}

	room, err := d.GetRoom(ctx, "82")
	if err != nil {
		t.Fatalf("GetRoom returned error: %v", err)
	}
	if string(room.Config) != string(cfg) {
		t.Fatalf("config mismatch: %s", room.Config)
	}
	if len(room.Guests) != 0 {
		t.Fatalf("new room should have no guests, got %d", len(room.Guests))
	}
}

func TestCreateRoomWhenAlreadyHost(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("11", "22")

	if _, err := d.CreateRoom(ctx, "host-1", nil); err != nil {
		t.Fatalf("first CreateRoom returned error: %v", err)
	}
	if _, err := d.CreateRoom(ctx, "host-1", nil); !errors.Is(err, domain.ErrAlreadyHost) {
		t.Fatalf("expected ErrAlreadyHost, got %v", err)
	}

	// The failed attempt must not have allocated another room.
	exists, err := d.RoomExists(ctx, "22")
	if err != nil {
		t.Fatalf("RoomExists returned error: %v", err)
	}
	if exists {
		t.Fatalf("second room must not exist after rejected create")
	}
}

func TestCreateRoomResamplesOnCollision(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("11", "11", "42")

	first, err := d.CreateRoom(ctx, "host-1", nil)
	if err != nil {
		t.Fatalf("first CreateRoom returned error: %v", err)
	}
	if first != "11" {
		t.Fatalf("expected first id 11, got %s", first)
	}

	second, err := d.CreateRoom(ctx, "host-2", nil)
	if err != nil {
		t.Fatalf("second CreateRoom returned error: %v", err)
	}
	if second != "42" {
		t.Fatalf("expected redraw to yield 42, got %s", second)
	}
}

func TestJoinRoom(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("82")

	cfg := json.RawMessage(`{"difficulty":"easy"}`)
	if _, err := d.CreateRoom(ctx, "host-1", cfg); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	user := json.RawMessage(`{"name":"Sam","color":"red"}`)
	room, err := d.JoinRoom(ctx, "guest-1", "82", "Sam", user)
	if err != nil {
		t.Fatalf("JoinRoom returned error: %v", err)
	}
	if string(room.Config) != string(cfg) {
		t.Fatalf("join must return the stored config, got %s", room.Config)
	}
	if room.HostConnID != "host-1" {
		t.Fatalf("join must return the host conn id, got %s", room.HostConnID)
	}

	g, ok := room.GuestByConn("guest-1")
	if !ok {
		t.Fatalf("joined guest missing from returned room")
	}
	if g.Name != "Sam" || string(g.Payload) != string(user) {
		t.Fatalf("guest record mismatch: %+v", g)
	}

	taken, err := d.NameTaken(ctx, "82", "Sam")
	if err != nil || !taken {
		t.Fatalf("expected Sam to be taken, taken=%v err=%v", taken, err)
	}
}

func TestJoinRoomUnknownID(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory()

	if _, err := d.JoinRoom(ctx, "guest-1", "99", "Sam", nil); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestJoinRoomDuplicateName(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("82")

	if _, err := d.CreateRoom(ctx, "host-1", nil); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if _, err := d.JoinRoom(ctx, "guest-1", "82", "Sam", nil); err != nil {
		t.Fatalf("first join returned error: %v", err)
	}
	if _, err := d.JoinRoom(ctx, "guest-2", "82", "Sam", nil); !errors.Is(err, domain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}

	// Uniqueness is case-sensitive: a different casing is a new name.
	if _, err := d.JoinRoom(ctx, "guest-2", "82", "sam", nil); err != nil {
		t.Fatalf("case-variant join returned error: %v", err)
	}

	// The rejected join must not have added a guest.
	room, err := d.GetRoom(ctx, "82")
	if err != nil {
		t.Fatalf("GetRoom returned error: %v", err)
	}
	if len(room.Guests) != 2 {
		t.Fatalf("expected 2 guests, got %d", len(room.Guests))
	}
}

func TestRemoveGuestFreesName(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("82")

	if _, err := d.CreateRoom(ctx, "host-1", nil); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if _, err := d.JoinRoom(ctx, "guest-1", "82", "Sam", nil); err != nil {
		t.Fatalf("join returned error: %v", err)
	}
	if err := d.RemoveGuest(ctx, "82", "guest-1"); err != nil {
		t.Fatalf("RemoveGuest returned error: %v", err)
	}

	if _, err := d.JoinRoom(ctx, "guest-2", "82", "Sam", nil); err != nil {
		t.Fatalf("rejoin with freed name returned error: %v", err)
	}
}

func TestRemoveRoomFreesIDAndHost(t *testing.T) {
	ctx := context.Background()
	d := newTestDirectory("82")

	if _, err := d.CreateRoom(ctx, "host-1", nil); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if err := d.RemoveRoom(ctx, "82"); err != nil {
		t.Fatalf("RemoveRoom returned error: %v", err)
	}

	exists, err := d.RoomExists(ctx, "82")
	if err != nil || exists {
		t.Fatalf("expected room gone, exists=%v err=%v", exists, err)
	}
	isHost, err := d.IsHost(ctx, "host-1")
	if err != nil || isHost {
		t.Fatalf("expected host released, isHost=%v err=%v", isHost, err)
	}

	// The id is available again after destruction.
	roomID, err := d.CreateRoom(ctx, "host-2", nil)
	if err != nil {
		t.Fatalf("recreate returned error: %v", err)
	}
	if roomID != "82" {
		t.Fatalf("expected reused id 82, got %s", roomID)
	}
}

func TestRandomIDWidth(t *testing.T) {
	d := NewDirectory(memory.NewRoomRepository(), 3)
	for i := 0; i < 50; i++ {
		id := d.randomID()
		if len(id) != 3 {
			t.Fatalf("expected 3-digit id, got %q", id)
		}
		for _, r := range id {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric id, got %q", id)
			}
		}
	}
}
