package service

import (
	"sync"

	"github.com/danfishgold/pizza-party/internal/domain"
)

type Role int

const (
	RoleUnassigned Role = iota
	RoleHost
	RoleGuest
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleGuest:
		return "guest"
	default:
		return "unassigned"
	}
}

// Membership is a connection's current role. The zero value means the
// connection has not created or joined anything, which is a valid state
// for its whole lifetime.
type Membership struct {
	Role   Role
	RoomID string
	Name   string // guests only
}

// Registry tracks the role of every live connection. A connection holds
// at most one role at a time; disconnects remove the entry entirely.
type Registry struct {
	mu      sync.RWMutex
	members map[string]Membership
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[string]Membership)}
}

func (r *Registry) Membership(connID string) Membership {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[connID]
}

// SetHost transitions connID to host of roomID. Only unassigned
// connections may become hosts.
func (r *Registry) SetHost(connID, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.members[connID].Role {
	case RoleHost:
		return domain.ErrAlreadyHost
	case RoleGuest:
		return domain.ErrAlreadyInRoom
	}
	r.members[connID] = Membership{Role: RoleHost, RoomID: roomID}
	return nil
}

// SetGuest transitions connID to guest of roomID. Only unassigned
// connections may join.
func (r *Registry) SetGuest(connID, roomID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.members[connID].Role {
	case RoleHost:
		return domain.ErrAlreadyHost
	case RoleGuest:
		return domain.ErrAlreadyInRoom
	}
	r.members[connID] = Membership{Role: RoleGuest, RoomID: roomID, Name: name}
	return nil
}

// Clear resets a single connection back to unassigned.
func (r *Registry) Clear(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, connID)
}

// ClearRoom resets every member of a destroyed room back to unassigned
// and returns their connection ids. Orphaned guests may then create or
// join another room on the same connection.
func (r *Registry) ClearRoom(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared []string
	for connID, m := range r.members {
		if m.RoomID == roomID {
			delete(r.members, connID)
			cleared = append(cleared, connID)
		}
	}
	return cleared
}
