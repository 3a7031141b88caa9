package domain

import "time"

type TodoID string

// Todo belongs to exactly one room. The authoritative copy is always what the
// backend echoes back, never a locally constructed value.
type Todo struct {
	ID        TodoID    `json:"id"`
	RoomID    RoomID    `json:"roomId"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoUpdate is a full replace of the mutable fields. There is no
// field-level patch on the wire.
type TodoUpdate struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// MaxTodoTextLength is enforced at the input surface, not by the REST client.
const MaxTodoTextLength = 200
