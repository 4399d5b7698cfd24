package ws

import "sync"

type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Hub is the room-scoped delivery map: every live connection plus, per
// room, the set of member connections. Audiences are resolved against
// the current maps at dispatch time; nothing is cached between messages.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn            // connID -> conn
	rooms map[string]map[string]Conn // roomID -> connID -> conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

// Register makes a connection addressable before it has a room.
func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
}

// Subscribe adds a connection to a room's delivery set.
func (h *Hub) Subscribe(roomID string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[roomID] = rs
	}
	rs[c.ID()] = c
}

func (h *Hub) Unsubscribe(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// DropRoom removes a room's whole delivery set and returns the ids of
// the connections that were in it.
func (h *Hub) DropRoom(roomID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs := h.rooms[roomID]
	delete(h.rooms, roomID)

	ids := make([]string, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast delivers msg to every current member of the room except
// exceptConnID (pass "" to reach everyone). Sends are best-effort.
func (h *Hub) Broadcast(roomID string, msg Message, exceptConnID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[roomID]; ok {
		for id, c := range rs {
			if id == exceptConnID {
				continue
			}
			_ = c.Send(msg)
		}
	}
}

// SendTo delivers msg to one connection. Returns false when the
// connection is no longer registered.
func (h *Hub) SendTo(connID string, msg Message) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	_ = c.Send(msg)
	return true
}
