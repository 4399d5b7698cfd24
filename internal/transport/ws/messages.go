package ws

import "encoding/json"

// Event types exchanged with the front end.
const (
	TypeCreateRoom     = "create-room"
	TypeCreateRoomResp = "create-room-response"
	TypeFindRoom       = "find-room"
	TypeFindRoomResp   = "find-room-response"
	TypeJoinRoom       = "join-room"
	TypeJoinRoomResp   = "join-room-response"
	TypeGuestJoined    = "guest-joined"
	TypeGuestLeft      = "guest-left"
	TypeHostLeft       = "host-left"
	TypeTripletUpdate  = "triplet-update"
	TypeKickGuest      = "kick-guest"
)

// Error kinds carried in join-room-response / find-room-response.
const (
	ErrKindNoRoom        = "no-room-with-id"
	ErrKindNameTaken     = "existing-username"
	ErrKindAlreadyInRoom = "already-in-room"
)

// ErrAlreadyHost is the create-room-response error string.
const ErrAlreadyHost = "already-host"

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payloads. Config and user are opaque except for the fields the
// lobby inspects (roomId, user.name); they are relayed verbatim.

type createRoomRequest struct {
	Config json.RawMessage `json:"config"`
}

type findRoomRequest struct {
	RoomID string `json:"roomId"`
}

type joinRoomRequest struct {
	RoomID string          `json:"roomId"`
	User   json.RawMessage `json:"user"`
}

// Outbound payload bodies.

type roomIDBody struct {
	RoomID string `json:"roomId"`
}

type configBody struct {
	Config json.RawMessage `json:"config"`
}

type userBody struct {
	User json.RawMessage `json:"user"`
}

// typedError is the structured error shape of join/find responses,
// carrying the offending value.
type typedError struct {
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

type result struct {
	OK    any `json:"ok,omitempty"`
	Error any `json:"error,omitempty"`
}

func mustMessage(typ string, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		// All outbound payloads are built from marshalable types.
		panic(err)
	}
	return Message{Type: typ, Payload: data}
}

func okMessage(typ string, body any) Message {
	return mustMessage(typ, result{OK: body})
}

func errStringMessage(typ, errStr string) Message {
	return mustMessage(typ, result{Error: errStr})
}

func errTypedMessage(typ, kind, offending string) Message {
	return mustMessage(typ, result{Error: typedError{Type: kind, Payload: offending}})
}
