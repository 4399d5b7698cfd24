package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danfishgold/pizza-party/internal/domain"
)

func TestInsertAndGet(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	room := &domain.Room{ID: "82", HostConnID: "h", CreatedAt: time.Now()}
	if err := repo.Insert(ctx, room); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	got, err := repo.Get(ctx, "82")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.HostConnID != "h" {
		t.Fatalf("unexpected host: %s", got.HostConnID)
	}

	if err := repo.Insert(ctx, &domain.Room{ID: "82", HostConnID: "h2"}); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("expected ErrRoomExists, got %v", err)
	}
	if err := repo.Insert(ctx, &domain.Room{ID: "99", HostConnID: "h"}); !errors.Is(err, domain.ErrAlreadyHost) {
		t.Fatalf("expected ErrAlreadyHost, got %v", err)
	}
}

func TestFindByHost(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	if _, err := repo.FindByHost(ctx, "h"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}

	if err := repo.Insert(ctx, &domain.Room{ID: "82", HostConnID: "h"}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	room, err := repo.FindByHost(ctx, "h")
	if err != nil {
		t.Fatalf("FindByHost returned error: %v", err)
	}
	if room.ID != "82" {
		t.Fatalf("unexpected room: %s", room.ID)
	}

	if err := repo.Delete(ctx, "82"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.FindByHost(ctx, "h"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("host index must be cleared on delete, got %v", err)
	}
}

func TestGuests(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	if err := repo.AddGuest(ctx, "82", domain.Guest{ConnID: "g1", Name: "Sam"}); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound for missing room, got %v", err)
	}

	if err := repo.Insert(ctx, &domain.Room{ID: "82", HostConnID: "h"}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := repo.AddGuest(ctx, "82", domain.Guest{ConnID: "g1", Name: "Sam"}); err != nil {
		t.Fatalf("AddGuest returned error: %v", err)
	}
	if err := repo.AddGuest(ctx, "82", domain.Guest{ConnID: "g2", Name: "Sam"}); !errors.Is(err, domain.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
	if err := repo.AddGuest(ctx, "82", domain.Guest{ConnID: "g2", Name: "Pat"}); err != nil {
		t.Fatalf("AddGuest returned error: %v", err)
	}

	taken, err := repo.NameTaken(ctx, "82", "Sam")
	if err != nil || !taken {
		t.Fatalf("expected Sam taken, taken=%v err=%v", taken, err)
	}

	// Join order is preserved.
	room, err := repo.Get(ctx, "82")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(room.Guests) != 2 || room.Guests[0].Name != "Sam" || room.Guests[1].Name != "Pat" {
		t.Fatalf("unexpected guest list: %+v", room.Guests)
	}

	if err := repo.RemoveGuest(ctx, "82", "g1"); err != nil {
		t.Fatalf("RemoveGuest returned error: %v", err)
	}
	if err := repo.RemoveGuest(ctx, "82", "g1"); !errors.Is(err, domain.ErrNotInRoom) {
		t.Fatalf("expected ErrNotInRoom, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	repo := NewRoomRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, &domain.Room{ID: "82", HostConnID: "h"}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if err := repo.AddGuest(ctx, "82", domain.Guest{ConnID: "g1", Name: "Sam"}); err != nil {
		t.Fatalf("AddGuest returned error: %v", err)
	}

	room, _ := repo.Get(ctx, "82")
	room.Guests[0].Name = "mutated"

	fresh, _ := repo.Get(ctx, "82")
	if fresh.Guests[0].Name != "Sam" {
		t.Fatalf("stored guest mutated through returned snapshot")
	}
}
