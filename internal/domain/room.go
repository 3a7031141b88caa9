package domain

import "time"

type RoomID string

// Room is a named container scoping one shared todo list. The backend owns
// every field; the client never mutates a room after it is created.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxRoomNameLength is enforced at the input surface, not by the REST client.
const MaxRoomNameLength = 50
