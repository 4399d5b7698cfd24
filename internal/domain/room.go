package domain

import (
	"encoding/json"
	"time"
)

// Room is a single party lobby: one host connection, zero or more guests.
// Config is whatever blob the host supplied at creation; it is stored and
// relayed to joining guests without being interpreted.
type Room struct {
	ID         string          `json:"id" db:"id"`
	HostConnID string          `json:"host_conn_id" db:"host_conn_id"`
	Config     json.RawMessage `json:"config" db:"config"`
	Guests     []Guest         `json:"guests"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Guest is a member of a room other than the host. Payload carries the
// full user object from the join request (name included) so it can be
// forwarded to the host verbatim.
type Guest struct {
	ConnID   string          `json:"conn_id" db:"conn_id"`
	Name     string          `json:"name" db:"name"`
	Payload  json.RawMessage `json:"payload" db:"payload"`
	JoinedAt time.Time       `json:"joined_at" db:"joined_at"`
}

// GuestByConn returns the guest with the given connection id, if any.
func (r *Room) GuestByConn(connID string) (Guest, bool) {
	for _, g := range r.Guests {
		if g.ConnID == connID {
			return g, true
		}
	}
	return Guest{}, false
}

// HasGuestName reports whether some guest already uses the name.
// Matching is case-sensitive; names are checked at join time only.
func (r *Room) HasGuestName(name string) bool {
	for _, g := range r.Guests {
		if g.Name == name {
			return true
		}
	}
	return false
}
