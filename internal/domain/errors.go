package domain

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomExists    = errors.New("room id already in use")
	ErrAlreadyHost   = errors.New("connection already hosts a room")
	ErrAlreadyInRoom = errors.New("connection already belongs to a room")
	ErrNameTaken     = errors.New("guest name already taken in the room")
	ErrNotInRoom     = errors.New("connection is not in the room")
)
