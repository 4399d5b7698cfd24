package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danfishgold/pizza-party/internal/domain"

	"github.com/go-chi/chi/v5"
)

// Directory is the read-only room surface exposed over HTTP for ops and
// debugging. The game protocol itself runs over the ws endpoint.
type Directory interface {
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
}

type Handler struct {
	dir Directory
}

func NewHandler(dir Directory) *Handler {
	return &Handler{dir: dir}
}

type RoomItem struct {
	ID         string    `json:"id"`
	GuestCount int       `json:"guestCount"`
	GuestNames []string  `json:"guestNames"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /rooms/{id}
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	room, err := h.dir.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "room not found"})
			return
		}
		slog.Error("handler.GetRoom:", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	names := make([]string, 0, len(room.Guests))
	for _, g := range room.Guests {
		names = append(names, g.Name)
	}
	writeJSON(w, http.StatusOK, RoomItem{
		ID:         room.ID,
		GuestCount: len(room.Guests),
		GuestNames: names,
		CreatedAt:  room.CreatedAt,
	})
}
