package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danfishgold/pizza-party/internal/domain"
	"github.com/danfishgold/pizza-party/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Directory is the room directory surface the transport needs.
type Directory interface {
	CreateRoom(ctx context.Context, connID string, config json.RawMessage) (string, error)
	JoinRoom(ctx context.Context, connID, roomID, name string, user json.RawMessage) (*domain.Room, error)
	GetRoom(ctx context.Context, roomID string) (*domain.Room, error)
	RoomExists(ctx context.Context, roomID string) (bool, error)
	RemoveRoom(ctx context.Context, roomID string) error
	RemoveGuest(ctx context.Context, roomID, connID string) error
}

// Roles is the per-connection role registry surface.
type Roles interface {
	Membership(connID string) service.Membership
	SetHost(connID, roomID string) error
	SetGuest(connID, roomID, name string) error
	Clear(connID string)
	ClearRoom(roomID string) []string
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	dir      Directory
	roles    Roles

	pingEvery time.Duration
}

func NewServer(hub *Hub, dir Directory, roles Roles, pingEvery time.Duration) *Server {
	if pingEvery <= 0 {
		pingEvery = 15 * time.Second
	}
	return &Server{
		hub:   hub,
		dir:   dir,
		roles: roles,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: pingEvery,
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWSConn(conn, uuid.NewString())
	s.hub.Register(c)
	slog.Info("ws connected", "conn", c.id)

	go s.writeLoop(c)
	s.readLoop(r.Context(), c)

	s.disconnect(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
	slog.Info("ws disconnected", "conn", c.id)
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Debug("ws bad frame", "conn", c.id, "err", err)
			continue
		}

		switch msg.Type {
		case TypeCreateRoom:
			s.handleCreateRoom(ctx, c, msg.Payload)
		case TypeFindRoom:
			s.handleFindRoom(ctx, c, msg.Payload)
		case TypeJoinRoom:
			s.handleJoinRoom(ctx, c, msg.Payload)
		case TypeTripletUpdate, TypeKickGuest:
			s.relay(c, msg)
		default:
			slog.Debug("ws unknown event", "conn", c.id, "type", msg.Type)
		}
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

func (s *Server) handleCreateRoom(ctx context.Context, c *wsConn, payload json.RawMessage) {
	var req createRoomRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			slog.Debug("ws bad create-room payload", "conn", c.id, "err", err)
			return
		}
	}

	if m := s.roles.Membership(c.id); m.Role != service.RoleUnassigned {
		_ = c.Send(errStringMessage(TypeCreateRoomResp, ErrAlreadyHost))
		return
	}

	roomID, err := s.dir.CreateRoom(ctx, c.id, req.Config)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyHost) {
			_ = c.Send(errStringMessage(TypeCreateRoomResp, ErrAlreadyHost))
			return
		}
		slog.Error("create room failed", "conn", c.id, "err", err)
		_ = c.Send(errStringMessage(TypeCreateRoomResp, "internal-error"))
		return
	}

	if err := s.roles.SetHost(c.id, roomID); err != nil {
		slog.Error("set host role failed", "conn", c.id, "room", roomID, "err", err)
	}
	s.hub.Subscribe(roomID, c)

	_ = c.Send(okMessage(TypeCreateRoomResp, roomIDBody{RoomID: roomID}))
	slog.Info("room created", "room", roomID, "host", c.id)
}

func (s *Server) handleFindRoom(ctx context.Context, c *wsConn, payload json.RawMessage) {
	var req findRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Debug("ws bad find-room payload", "conn", c.id, "err", err)
		return
	}

	exists, err := s.dir.RoomExists(ctx, req.RoomID)
	if err != nil {
		slog.Error("find room failed", "conn", c.id, "room", req.RoomID, "err", err)
		_ = c.Send(errTypedMessage(TypeFindRoomResp, "internal-error", req.RoomID))
		return
	}
	if !exists {
		_ = c.Send(errTypedMessage(TypeFindRoomResp, ErrKindNoRoom, req.RoomID))
		return
	}
	_ = c.Send(okMessage(TypeFindRoomResp, roomIDBody{RoomID: req.RoomID}))
}

func (s *Server) handleJoinRoom(ctx context.Context, c *wsConn, payload json.RawMessage) {
	var req joinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		slog.Debug("ws bad join-room payload", "conn", c.id, "err", err)
		return
	}
	var user struct {
		Name string `json:"name"`
	}
	if len(req.User) > 0 {
		if err := json.Unmarshal(req.User, &user); err != nil {
			slog.Debug("ws bad join-room user", "conn", c.id, "err", err)
			return
		}
	}

	if m := s.roles.Membership(c.id); m.Role != service.RoleUnassigned {
		_ = c.Send(errTypedMessage(TypeJoinRoomResp, ErrKindAlreadyInRoom, m.RoomID))
		return
	}

	room, err := s.dir.JoinRoom(ctx, c.id, req.RoomID, user.Name, req.User)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			_ = c.Send(errTypedMessage(TypeJoinRoomResp, ErrKindNoRoom, req.RoomID))
		case errors.Is(err, domain.ErrNameTaken):
			_ = c.Send(errTypedMessage(TypeJoinRoomResp, ErrKindNameTaken, user.Name))
		default:
			slog.Error("join room failed", "conn", c.id, "room", req.RoomID, "err", err)
			_ = c.Send(errTypedMessage(TypeJoinRoomResp, "internal-error", req.RoomID))
		}
		return
	}

	if err := s.roles.SetGuest(c.id, room.ID, user.Name); err != nil {
		slog.Error("set guest role failed", "conn", c.id, "room", room.ID, "err", err)
	}
	s.hub.Subscribe(room.ID, c)

	_ = c.Send(okMessage(TypeJoinRoomResp, configBody{Config: room.Config}))
	s.hub.SendTo(room.HostConnID, okMessage(TypeGuestJoined, userBody{User: req.User}))
	slog.Info("guest joined", "room", room.ID, "conn", c.id, "name", user.Name)
}

// relay forwards an in-room event to every other member of the sender's
// room. Connections without a role have no room and are ignored.
func (s *Server) relay(c *wsConn, msg Message) {
	m := s.roles.Membership(c.id)
	if m.Role == service.RoleUnassigned {
		slog.Debug("ws relay from unassigned conn", "conn", c.id, "type", msg.Type)
		return
	}
	s.hub.Broadcast(m.RoomID, msg, c.id)
}

// disconnect runs the exit actions for the connection's current role.
func (s *Server) disconnect(c *wsConn) {
	ctx := context.Background()
	m := s.roles.Membership(c.id)

	switch m.Role {
	case service.RoleHost:
		s.hub.Broadcast(m.RoomID, Message{Type: TypeHostLeft}, c.id)
		if err := s.dir.RemoveRoom(ctx, m.RoomID); err != nil {
			slog.Warn("remove room failed", "room", m.RoomID, "err", err)
		}
		s.hub.DropRoom(m.RoomID)
		s.roles.ClearRoom(m.RoomID)
		slog.Info("host left, room destroyed", "room", m.RoomID, "host", c.id)

	case service.RoleGuest:
		room, err := s.dir.GetRoom(ctx, m.RoomID)
		if err == nil {
			if g, ok := room.GuestByConn(c.id); ok {
				s.hub.SendTo(room.HostConnID, okMessage(TypeGuestLeft, userBody{User: g.Payload}))
			}
			if err := s.dir.RemoveGuest(ctx, m.RoomID, c.id); err != nil {
				slog.Warn("remove guest failed", "room", m.RoomID, "conn", c.id, "err", err)
			}
		} else if !errors.Is(err, domain.ErrRoomNotFound) {
			slog.Warn("lookup room on guest exit failed", "room", m.RoomID, "err", err)
		}
		s.hub.Unsubscribe(m.RoomID, c.id)
		s.roles.Clear(c.id)
		slog.Info("guest left", "room", m.RoomID, "conn", c.id, "name", m.Name)
	}

	s.hub.Unregister(c.id)
}

// --- connection ---

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{}
	closed chan struct{}
}

func newWSConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}
